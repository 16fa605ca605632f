package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SberTube/sbertube-api/internal/models/events"
	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// ReactionAction 指定表态动作。
type ReactionAction string

const (
	// ReactionActionAdd 表示新增表态。
	ReactionActionAdd ReactionAction = "add"
	// ReactionActionRemove 表示撤销表态。
	ReactionActionRemove ReactionAction = "remove"
)

// ReactionService 处理点赞/点踩逻辑，表态记录与冗余计数在同一事务内维护。
type ReactionService struct {
	videos    VideoRepo
	users     UserRepo
	reactions ReactionRepo
	assembler *viewAssembler
	events    *eventWriter
	txManager txmanager.Manager
	log       *log.Helper
}

// NewReactionService 构造 ReactionService。
func NewReactionService(
	videos VideoRepo,
	users UserRepo,
	comments CommentRepo,
	reactions ReactionRepo,
	outbox OutboxEnqueuer,
	tx txmanager.Manager,
	logger log.Logger,
) *ReactionService {
	return &ReactionService{
		videos:    videos,
		users:     users,
		reactions: reactions,
		assembler: newViewAssembler(users, comments, reactions),
		events:    newEventWriter(outbox, "reaction"),
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// MutateReactionInput 描述表态变更参数。
type MutateReactionInput struct {
	Title  string
	Kind   po.ReactionKind
	Action ReactionAction
}

// Mutate 执行表态新增或撤销，并返回调整后的视频视图。
// 重复表态与撤销不存在的表态均为幂等空操作，计数不变。
func (s *ReactionService) Mutate(ctx context.Context, identity Identity, input MutateReactionInput) (*vo.VideoView, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}
	if !input.Kind.Valid() {
		return nil, errors.BadRequest(ReasonInvalidArgument, fmt.Sprintf("unsupported reaction kind %q", input.Kind))
	}

	var view *vo.VideoView
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		user, repoErr := s.users.GetByEmail(txCtx, sess, identity.Email)
		if repoErr != nil {
			return repoErr
		}
		video, repoErr := s.videos.GetByTitle(txCtx, sess, input.Title)
		if repoErr != nil {
			return repoErr
		}

		occurredAt := time.Now().UTC()
		var (
			changed bool
			delta   int64
			evt     *events.DomainEvent
		)
		switch input.Action {
		case ReactionActionAdd:
			changed, repoErr = s.reactions.Insert(txCtx, sess, user.UserID, video.VideoID, input.Kind)
			delta = 1
		case ReactionActionRemove:
			changed, repoErr = s.reactions.Delete(txCtx, sess, user.UserID, video.VideoID, input.Kind)
			delta = -1
		default:
			return errors.BadRequest(ReasonInvalidArgument, fmt.Sprintf("invalid reaction action %q", input.Action))
		}
		if repoErr != nil {
			return repoErr
		}

		if changed {
			likesDelta, dislikesDelta := int64(0), int64(0)
			if input.Kind == po.ReactionLike {
				likesDelta = delta
			} else {
				dislikesDelta = delta
			}
			video, repoErr = s.videos.AdjustReactionCount(txCtx, sess, video.VideoID, likesDelta, dislikesDelta)
			if repoErr != nil {
				return repoErr
			}

			var buildErr error
			if input.Action == ReactionActionAdd {
				evt, buildErr = events.NewReactionAddedEvent(video, user.UserID, input.Kind, occurredAt)
			} else {
				evt, buildErr = events.NewReactionRemovedEvent(video, user.UserID, input.Kind, occurredAt)
			}
			if buildErr != nil {
				return fmt.Errorf("build reaction event: %w", buildErr)
			}
			if err := s.events.enqueue(txCtx, sess, evt); err != nil {
				return err
			}
		}

		var asmErr error
		view, asmErr = s.assembler.assemble(txCtx, sess, video)
		return asmErr
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrVideoNotFound):
			return nil, ErrVideoNotFound
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, context.DeadlineExceeded):
			s.log.WithContext(ctx).Warnf("mutate reaction timeout: title=%s", input.Title)
			return nil, errors.GatewayTimeout(ReasonQueryTimeout, "mutate reaction timeout")
		}
		if kerr := errors.FromError(err); kerr != nil && kerr.Code != 500 {
			return nil, err
		}
		s.log.WithContext(ctx).Errorf("mutate reaction failed: title=%s err=%v", input.Title, err)
		return nil, errors.InternalServer(ReasonOperationFailed, "failed to mutate reaction").WithCause(fmt.Errorf("mutate reaction: %w", err))
	}

	s.log.WithContext(ctx).Infof("MutateReaction: video_id=%s kind=%s action=%s", view.VideoID, input.Kind, input.Action)
	return view, nil
}
