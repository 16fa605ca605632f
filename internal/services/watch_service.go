package services

import (
	"context"
	"fmt"

	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// WatchService 维护视频的观看进度。
// 进度单调不减且不超过视频总时长，首次上报后视频标记为已观看。
type WatchService struct {
	videos    VideoRepo
	assembler *viewAssembler
	txManager txmanager.Manager
	log       *log.Helper
}

// NewWatchService 构造 WatchService。
func NewWatchService(videos VideoRepo, users UserRepo, comments CommentRepo, reactions ReactionRepo, tx txmanager.Manager, logger log.Logger) *WatchService {
	return &WatchService{
		videos:    videos,
		assembler: newViewAssembler(users, comments, reactions),
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// MarkProgress 上报观看进度并返回更新后的视频视图。
func (s *WatchService) MarkProgress(ctx context.Context, title string, watchedSeconds int64) (*vo.VideoView, error) {
	if watchedSeconds < 0 {
		return nil, errors.BadRequest(ReasonInvalidArgument, "watched time must not be negative")
	}

	var view *vo.VideoView
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		video, repoErr := s.videos.GetByTitle(txCtx, sess, title)
		if repoErr != nil {
			return repoErr
		}
		updated, repoErr := s.videos.UpdateWatchProgress(txCtx, sess, video.VideoID, watchedSeconds)
		if repoErr != nil {
			return repoErr
		}
		var asmErr error
		view, asmErr = s.assembler.assemble(txCtx, sess, updated)
		return asmErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			return nil, ErrVideoNotFound
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.WithContext(ctx).Warnf("mark progress timeout: title=%s", title)
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "mark progress timeout")
		}
		s.log.WithContext(ctx).Errorf("mark progress failed: title=%s err=%v", title, err)
		return nil, errors.InternalServer(ReasonOperationFailed, "failed to mark progress").WithCause(fmt.Errorf("mark progress: %w", err))
	}

	s.log.WithContext(ctx).Debugf("MarkProgress: video_id=%s watched=%d", view.VideoID, view.WatchedTime)
	return view, nil
}
