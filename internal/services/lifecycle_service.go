package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SberTube/sbertube-api/internal/models/events"
	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// LifecycleService 负责视频的上传、编辑与删除，写路径均在事务内完成并同事务写入 Outbox。
type LifecycleService struct {
	videos    VideoRepo
	users     UserRepo
	store     MediaStore
	prober    DurationProber
	assembler *viewAssembler
	events    *eventWriter
	txManager txmanager.Manager
	log       *log.Helper
}

// NewLifecycleService 构造 LifecycleService。
func NewLifecycleService(
	videos VideoRepo,
	users UserRepo,
	comments CommentRepo,
	reactions ReactionRepo,
	store MediaStore,
	prober DurationProber,
	outbox OutboxEnqueuer,
	tx txmanager.Manager,
	logger log.Logger,
) *LifecycleService {
	return &LifecycleService{
		videos:    videos,
		users:     users,
		store:     store,
		prober:    prober,
		assembler: newViewAssembler(users, comments, reactions),
		events:    newEventWriter(outbox, "lifecycle"),
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// UploadVideoInput 表示上传视频的输入。
type UploadVideoInput struct {
	Title     string
	Body      string
	ShortBody string
	Filename  string
	File      io.Reader
}

// UpdateVideoInput 表示编辑视频的输入，Title 定位目标，其余字段按需更新。
type UpdateVideoInput struct {
	Title     string
	NewTitle  *string
	Body      *string
	ShortBody *string
}

// Upload 保存媒体文件、探测时长，并在单个事务内落库与写事件。
// 探测在事务之外执行，避免外部进程占用数据库连接。
func (s *LifecycleService) Upload(ctx context.Context, identity Identity, input UploadVideoInput) (*vo.VideoView, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.BadRequest(ReasonInvalidArgument, "title is required")
	}
	if input.File == nil {
		return nil, errors.BadRequest(ReasonInvalidArgument, "video file is required")
	}

	path, err := s.store.Save(ctx, input.Filename, input.File)
	if err != nil {
		s.log.WithContext(ctx).Errorf("save media failed: title=%s err=%v", input.Title, err)
		return nil, errors.InternalServer(ReasonOperationFailed, "failed to store media file").WithCause(fmt.Errorf("save media: %w", err))
	}

	duration, err := s.prober.Probe(ctx, path)
	if err != nil {
		s.removeMedia(ctx, path)
		s.log.WithContext(ctx).Warnf("probe media failed: title=%s path=%s err=%v", input.Title, path, err)
		return nil, errors.BadRequest(ReasonMediaUnreadable, "failed to read media duration").WithCause(err)
	}

	var view *vo.VideoView
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		author, repoErr := s.users.GetByEmail(txCtx, sess, identity.Email)
		if repoErr != nil {
			return repoErr
		}
		if _, repoErr = s.users.Touch(txCtx, sess, author.UserID); repoErr != nil {
			return repoErr
		}

		video, repoErr := s.videos.Create(txCtx, sess, repositories.CreateVideoInput{
			Title:              input.Title,
			Body:               input.Body,
			ShortBody:          input.ShortBody,
			Path:               path,
			TimeToWatchSeconds: int64(duration / time.Second),
			AuthorID:           author.UserID,
		})
		if repoErr != nil {
			return repoErr
		}

		evt, buildErr := events.NewVideoCreatedEvent(video, video.CreatedAt)
		if buildErr != nil {
			return fmt.Errorf("build video created event: %w", buildErr)
		}
		if err := s.events.enqueue(txCtx, sess, evt); err != nil {
			return err
		}

		view = vo.NewVideoView(video, author, nil, nil)
		return nil
	})
	if err != nil {
		s.removeMedia(ctx, path)
		return nil, s.mapWriteError(ctx, err, "upload video", input.Title)
	}

	s.log.WithContext(ctx).Infof("UploadVideo: video_id=%s title=%s author=%s", view.VideoID, view.Title, identity.Email)
	return view, nil
}

// Update 编辑视频内容。仅作者本人可操作，路径、作者与计数字段不受影响。
func (s *LifecycleService) Update(ctx context.Context, identity Identity, input UpdateVideoInput) (*vo.VideoView, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}
	if input.NewTitle == nil && input.Body == nil && input.ShortBody == nil {
		return nil, errors.BadRequest(ReasonInvalidArgument, "no fields to update")
	}

	var view *vo.VideoView
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		video, repoErr := s.videos.GetByTitle(txCtx, sess, input.Title)
		if repoErr != nil {
			return repoErr
		}
		if ownErr := s.checkOwnership(txCtx, sess, video, identity); ownErr != nil {
			return ownErr
		}

		updated, repoErr := s.videos.UpdateContent(txCtx, sess, repositories.UpdateVideoContentInput{
			VideoID:   video.VideoID,
			Title:     input.NewTitle,
			Body:      input.Body,
			ShortBody: input.ShortBody,
		})
		if repoErr != nil {
			return repoErr
		}

		evt, buildErr := events.NewVideoUpdatedEvent(updated, updated.UpdatedAt)
		if buildErr != nil {
			return fmt.Errorf("build video updated event: %w", buildErr)
		}
		if err := s.events.enqueue(txCtx, sess, evt); err != nil {
			return err
		}

		var asmErr error
		view, asmErr = s.assembler.assemble(txCtx, sess, updated)
		return asmErr
	})
	if err != nil {
		return nil, s.mapWriteError(ctx, err, "update video", input.Title)
	}

	s.log.WithContext(ctx).Infof("UpdateVideo: video_id=%s title=%s", view.VideoID, view.Title)
	return view, nil
}

// Delete 删除视频。评论与表态级联清除，媒体文件在事务提交后尽力清理。
func (s *LifecycleService) Delete(ctx context.Context, identity Identity, title string) (*vo.VideoDeleted, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}

	var (
		deleted   *po.Video
		deletedAt time.Time
	)
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		video, repoErr := s.videos.GetByTitle(txCtx, sess, title)
		if repoErr != nil {
			return repoErr
		}
		if ownErr := s.checkOwnership(txCtx, sess, video, identity); ownErr != nil {
			return ownErr
		}

		removed, repoErr := s.videos.Delete(txCtx, sess, video.VideoID)
		if repoErr != nil {
			return repoErr
		}
		deletedAt = time.Now().UTC()

		evt, buildErr := events.NewVideoDeletedEvent(removed, deletedAt)
		if buildErr != nil {
			return fmt.Errorf("build video deleted event: %w", buildErr)
		}
		if err := s.events.enqueue(txCtx, sess, evt); err != nil {
			return err
		}

		deleted = removed
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(ctx, err, "delete video", title)
	}

	s.removeMedia(ctx, deleted.Path)
	s.log.WithContext(ctx).Infof("DeleteVideo: video_id=%s title=%s", deleted.VideoID, deleted.Title)
	return vo.NewVideoDeleted(deleted, deletedAt), nil
}

// checkOwnership 校验调用者是否为视频作者，归属以邮箱精确比对判定。
func (s *LifecycleService) checkOwnership(ctx context.Context, sess txmanager.Session, video *po.Video, identity Identity) error {
	author, err := s.users.GetByID(ctx, sess, video.AuthorID)
	if err != nil {
		return err
	}
	if author.Email != identity.Email {
		return errors.Forbidden(ReasonNotVideoOwner, "caller is not the video owner")
	}
	return nil
}

func (s *LifecycleService) removeMedia(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.store.Remove(ctx, path); err != nil {
		s.log.WithContext(ctx).Warnf("remove media failed: path=%s err=%v", path, err)
	}
}

func (s *LifecycleService) mapWriteError(ctx context.Context, err error, op, title string) error {
	switch {
	case errors.Is(err, repositories.ErrVideoNotFound):
		return ErrVideoNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrVideoTitleTaken):
		return errors.Conflict(ReasonVideoTitleTaken, "video title already taken")
	case errors.Is(err, context.DeadlineExceeded):
		s.log.WithContext(ctx).Warnf("%s timeout: title=%s", op, title)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	if kerr := errors.FromError(err); kerr != nil && kerr.Code != 500 {
		return err
	}
	s.log.WithContext(ctx).Errorf("%s failed: title=%s err=%v", op, title, err)
	return errors.InternalServer(ReasonOperationFailed, "failed to "+op).WithCause(fmt.Errorf("%s: %w", op, err))
}
