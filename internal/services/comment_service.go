package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SberTube/sbertube-api/internal/models/events"
	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// CommentService 处理评论的创建、编辑与点赞。
// 评论点赞记录与冗余计数在同一事务内维护。
type CommentService struct {
	videos    VideoRepo
	users     UserRepo
	comments  CommentRepo
	events    *eventWriter
	txManager txmanager.Manager
	log       *log.Helper
}

// NewCommentService 构造 CommentService。
func NewCommentService(
	videos VideoRepo,
	users UserRepo,
	comments CommentRepo,
	outbox OutboxEnqueuer,
	tx txmanager.Manager,
	logger log.Logger,
) *CommentService {
	return &CommentService{
		videos:    videos,
		users:     users,
		comments:  comments,
		events:    newEventWriter(outbox, "comment"),
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// AddCommentInput 表示创建评论的输入。
type AddCommentInput struct {
	VideoTitle string
	Title      string
	Body       string
}

// EditCommentInput 表示编辑评论的输入。
type EditCommentInput struct {
	CommentID uuid.UUID
	Title     *string
	Body      *string
}

// Add 在指定视频下创建评论。
func (s *CommentService) Add(ctx context.Context, identity Identity, input AddCommentInput) (*vo.CommentView, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, errors.BadRequest(ReasonInvalidArgument, "comment body is required")
	}

	var view *vo.CommentView
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		author, repoErr := s.users.GetByEmail(txCtx, sess, identity.Email)
		if repoErr != nil {
			return repoErr
		}
		video, repoErr := s.videos.GetByTitle(txCtx, sess, input.VideoTitle)
		if repoErr != nil {
			return repoErr
		}

		comment, repoErr := s.comments.Create(txCtx, sess, repositories.CreateCommentInput{
			VideoID:  video.VideoID,
			AuthorID: author.UserID,
			Title:    input.Title,
			Body:     input.Body,
		})
		if repoErr != nil {
			return repoErr
		}

		evt, buildErr := events.NewCommentCreatedEvent(comment, comment.CreatedAt)
		if buildErr != nil {
			return fmt.Errorf("build comment created event: %w", buildErr)
		}
		if err := s.events.enqueue(txCtx, sess, evt); err != nil {
			return err
		}

		view = commentView(comment, author)
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, err, "add comment")
	}

	s.log.WithContext(ctx).Infof("AddComment: comment_id=%s video_title=%s", view.CommentID, input.VideoTitle)
	return view, nil
}

// Edit 编辑评论内容。仅评论作者本人可操作。
func (s *CommentService) Edit(ctx context.Context, identity Identity, input EditCommentInput) (*vo.CommentView, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}
	if input.Title == nil && input.Body == nil {
		return nil, errors.BadRequest(ReasonInvalidArgument, "no fields to update")
	}

	var view *vo.CommentView
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		comment, repoErr := s.comments.GetByID(txCtx, sess, input.CommentID)
		if repoErr != nil {
			return repoErr
		}
		author, repoErr := s.users.GetByID(txCtx, sess, comment.AuthorID)
		if repoErr != nil {
			return repoErr
		}
		if author.Email != identity.Email {
			return errors.Forbidden(ReasonNotCommentOwner, "caller is not the comment owner")
		}

		updated, repoErr := s.comments.UpdateContent(txCtx, sess, input.CommentID, input.Title, input.Body)
		if repoErr != nil {
			return repoErr
		}

		view = commentView(updated, author)
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, err, "edit comment")
	}

	s.log.WithContext(ctx).Infof("EditComment: comment_id=%s", view.CommentID)
	return view, nil
}

// Like 点赞评论。重复点赞为幂等空操作。
func (s *CommentService) Like(ctx context.Context, identity Identity, commentID uuid.UUID) (*vo.CommentView, error) {
	return s.mutateLike(ctx, identity, commentID, true)
}

// Unlike 撤销评论点赞。记录不存在时为幂等空操作。
func (s *CommentService) Unlike(ctx context.Context, identity Identity, commentID uuid.UUID) (*vo.CommentView, error) {
	return s.mutateLike(ctx, identity, commentID, false)
}

func (s *CommentService) mutateLike(ctx context.Context, identity Identity, commentID uuid.UUID, add bool) (*vo.CommentView, error) {
	if !identity.Valid() {
		return nil, errors.Unauthorized(ReasonInvalidArgument, "caller email is required")
	}

	var view *vo.CommentView
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		user, repoErr := s.users.GetByEmail(txCtx, sess, identity.Email)
		if repoErr != nil {
			return repoErr
		}
		comment, repoErr := s.comments.GetByID(txCtx, sess, commentID)
		if repoErr != nil {
			return repoErr
		}

		var changed bool
		delta := int64(1)
		if add {
			changed, repoErr = s.comments.InsertLike(txCtx, sess, user.UserID, commentID)
		} else {
			changed, repoErr = s.comments.DeleteLike(txCtx, sess, user.UserID, commentID)
			delta = -1
		}
		if repoErr != nil {
			return repoErr
		}
		if changed {
			comment, repoErr = s.comments.AdjustLikesCount(txCtx, sess, commentID, delta)
			if repoErr != nil {
				return repoErr
			}
		}

		author, repoErr := s.users.GetByID(txCtx, sess, comment.AuthorID)
		if repoErr != nil {
			return repoErr
		}
		view = commentView(comment, author)
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, err, "mutate comment like")
	}
	return view, nil
}

func commentView(comment *po.Comment, author *po.User) *vo.CommentView {
	row := po.CommentWithAuthor{Comment: *comment}
	if author != nil {
		row.AuthorEmail = author.Email
		row.AuthorUsername = author.Username
	}
	return vo.NewCommentView(&row)
}

func (s *CommentService) mapError(ctx context.Context, err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrVideoNotFound):
		return ErrVideoNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrCommentNotFound):
		return ErrCommentNotFound
	case errors.Is(err, context.DeadlineExceeded):
		s.log.WithContext(ctx).Warnf("%s timeout", op)
		return errors.GatewayTimeout(ReasonQueryTimeout, op+" timeout")
	}
	if kerr := errors.FromError(err); kerr != nil && kerr.Code != 500 {
		return err
	}
	s.log.WithContext(ctx).Errorf("%s failed: err=%v", op, err)
	return errors.InternalServer(ReasonOperationFailed, "failed to "+op).WithCause(fmt.Errorf("%s: %w", op, err))
}
