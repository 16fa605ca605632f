package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// QueryService 封装视频只读用例，全部查询在只读事务内完成。
type QueryService struct {
	videos    VideoRepo
	assembler *viewAssembler
	txManager txmanager.Manager
	log       *log.Helper
}

// NewQueryService 构造视频查询服务。
func NewQueryService(videos VideoRepo, users UserRepo, comments CommentRepo, reactions ReactionRepo, tx txmanager.Manager, logger log.Logger) *QueryService {
	return &QueryService{
		videos:    videos,
		assembler: newViewAssembler(users, comments, reactions),
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// GetAll 返回视频列表，search 非空时按标题精确过滤。
// 无匹配结果返回空切片而非 NotFound。
func (s *QueryService) GetAll(ctx context.Context, search *string) ([]vo.VideoView, error) {
	if search != nil && strings.TrimSpace(*search) == "" {
		search = nil
	}

	var views []vo.VideoView
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		items, repoErr := s.videos.List(txCtx, sess, search)
		if repoErr != nil {
			return repoErr
		}
		var asmErr error
		views, asmErr = s.assembler.assembleAll(txCtx, sess, items)
		return asmErr
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("list videos timeout")
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "query timeout")
		}
		s.log.WithContext(ctx).Errorf("list videos failed: err=%v", err)
		return nil, errors.InternalServer(ReasonOperationFailed, "failed to list videos").WithCause(fmt.Errorf("list videos: %w", err))
	}
	return views, nil
}

// GetByTitle 按标题返回视频详情及其完整关联图。
func (s *QueryService) GetByTitle(ctx context.Context, title string) (*vo.VideoView, error) {
	var view *vo.VideoView
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var video *po.Video
		video, repoErr := s.videos.GetByTitle(txCtx, sess, title)
		if repoErr != nil {
			return repoErr
		}
		var asmErr error
		view, asmErr = s.assembler.assemble(txCtx, sess, video)
		return asmErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("get video timeout: title=%s", title)
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "query timeout")
		}
		s.log.WithContext(ctx).Errorf("get video failed: title=%s err=%v", title, err)
		return nil, errors.InternalServer(ReasonOperationFailed, "failed to query video").WithCause(fmt.Errorf("get video by title: %w", err))
	}

	s.log.WithContext(ctx).Debugf("GetVideoByTitle: video_id=%s title=%s", view.VideoID, view.Title)
	return view, nil
}
