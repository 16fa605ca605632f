package services

import (
	"context"
	"io"
	"time"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// VideoRepo 定义视频用例所需的持久化能力。
type VideoRepo interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreateVideoInput) (*po.Video, error)
	GetByTitle(ctx context.Context, sess txmanager.Session, title string) (*po.Video, error)
	GetByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	List(ctx context.Context, sess txmanager.Session, title *string) ([]po.Video, error)
	UpdateContent(ctx context.Context, sess txmanager.Session, input repositories.UpdateVideoContentInput) (*po.Video, error)
	Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error)
	UpdateWatchProgress(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, watchedSeconds int64) (*po.Video, error)
	AdjustReactionCount(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, likesDelta, dislikesDelta int64) (*po.Video, error)
}

// UserRepo 定义用户档案访问能力。
type UserRepo interface {
	GetByEmail(ctx context.Context, sess txmanager.Session, email string) (*po.User, error)
	GetByID(ctx context.Context, sess txmanager.Session, userID uuid.UUID) (*po.User, error)
	ListByIDs(ctx context.Context, sess txmanager.Session, userIDs []uuid.UUID) (map[uuid.UUID]po.User, error)
	Touch(ctx context.Context, sess txmanager.Session, userID uuid.UUID) (*po.User, error)
}

// ReactionRepo 定义表态仓储行为。
type ReactionRepo interface {
	Insert(ctx context.Context, sess txmanager.Session, userID, videoID uuid.UUID, kind po.ReactionKind) (bool, error)
	Delete(ctx context.Context, sess txmanager.Session, userID, videoID uuid.UUID, kind po.ReactionKind) (bool, error)
	ListByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) ([]po.ReactionWithUser, error)
	ListByVideos(ctx context.Context, sess txmanager.Session, videoIDs []uuid.UUID) (map[uuid.UUID][]po.ReactionWithUser, error)
}

// CommentRepo 定义评论仓储行为。
type CommentRepo interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreateCommentInput) (*po.Comment, error)
	GetByID(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error)
	UpdateContent(ctx context.Context, sess txmanager.Session, commentID uuid.UUID, title, body *string) (*po.Comment, error)
	ListByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) ([]po.CommentWithAuthor, error)
	ListByVideos(ctx context.Context, sess txmanager.Session, videoIDs []uuid.UUID) (map[uuid.UUID][]po.CommentWithAuthor, error)
	InsertLike(ctx context.Context, sess txmanager.Session, userID, commentID uuid.UUID) (bool, error)
	DeleteLike(ctx context.Context, sess txmanager.Session, userID, commentID uuid.UUID) (bool, error)
	AdjustLikesCount(ctx context.Context, sess txmanager.Session, commentID uuid.UUID, delta int64) (*po.Comment, error)
}

// OutboxEnqueuer 定义写 Outbox 的接口。
type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, sess txmanager.Session, msg repositories.OutboxMessage) error
}

// DurationProber 抽象媒体时长探测能力。
type DurationProber interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// MediaStore 抽象媒体文件的落盘与清理。
type MediaStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// LifecycleServiceInterface 抽象视频生命周期用例，便于测试替换。
type LifecycleServiceInterface interface {
	Upload(ctx context.Context, identity Identity, input UploadVideoInput) (*vo.VideoView, error)
	Update(ctx context.Context, identity Identity, input UpdateVideoInput) (*vo.VideoView, error)
	Delete(ctx context.Context, identity Identity, title string) (*vo.VideoDeleted, error)
}

// QueryServiceInterface 抽象视频只读用例。
type QueryServiceInterface interface {
	GetAll(ctx context.Context, search *string) ([]vo.VideoView, error)
	GetByTitle(ctx context.Context, title string) (*vo.VideoView, error)
}

// ReactionServiceInterface 抽象表态用例。
type ReactionServiceInterface interface {
	Mutate(ctx context.Context, identity Identity, input MutateReactionInput) (*vo.VideoView, error)
}

// CommentServiceInterface 抽象评论用例。
type CommentServiceInterface interface {
	Add(ctx context.Context, identity Identity, input AddCommentInput) (*vo.CommentView, error)
	Edit(ctx context.Context, identity Identity, input EditCommentInput) (*vo.CommentView, error)
	Like(ctx context.Context, identity Identity, commentID uuid.UUID) (*vo.CommentView, error)
	Unlike(ctx context.Context, identity Identity, commentID uuid.UUID) (*vo.CommentView, error)
}

// WatchServiceInterface 抽象观看进度用例。
type WatchServiceInterface interface {
	MarkProgress(ctx context.Context, title string, watchedSeconds int64) (*vo.VideoView, error)
}

var (
	_ LifecycleServiceInterface = (*LifecycleService)(nil)
	_ QueryServiceInterface     = (*QueryService)(nil)
	_ ReactionServiceInterface  = (*ReactionService)(nil)
	_ CommentServiceInterface   = (*CommentService)(nil)
	_ WatchServiceInterface     = (*WatchService)(nil)
)
