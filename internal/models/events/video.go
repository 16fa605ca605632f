package events

import (
	"time"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/google/uuid"
)

// VideoSnapshotPayload 表示视频事件携带的核心快照。
type VideoSnapshotPayload struct {
	VideoID     uuid.UUID `json:"video_id"`
	Title       string    `json:"title"`
	AuthorID    uuid.UUID `json:"author_id"`
	Path        string    `json:"path"`
	TimeToWatch int64     `json:"time_to_watch_seconds"`
	Version     int64     `json:"version"`
}

func snapshotPayload(video *po.Video) VideoSnapshotPayload {
	return VideoSnapshotPayload{
		VideoID:     video.VideoID,
		Title:       video.Title,
		AuthorID:    video.AuthorID,
		Path:        video.Path,
		TimeToWatch: video.TimeToWatchSeconds,
		Version:     video.Version,
	}
}

// NewVideoCreatedEvent 构造视频创建事件。
func NewVideoCreatedEvent(video *po.Video, occurredAt time.Time) (*DomainEvent, error) {
	return NewDomainEvent(KindVideoCreated, AggregateVideo, video.VideoID, occurredAt, snapshotPayload(video))
}

// NewVideoUpdatedEvent 构造视频更新事件。
func NewVideoUpdatedEvent(video *po.Video, occurredAt time.Time) (*DomainEvent, error) {
	return NewDomainEvent(KindVideoUpdated, AggregateVideo, video.VideoID, occurredAt, snapshotPayload(video))
}

// NewVideoDeletedEvent 构造视频删除事件。
// 负载携带媒体文件路径，供下游清理存储介质。
func NewVideoDeletedEvent(video *po.Video, occurredAt time.Time) (*DomainEvent, error) {
	return NewDomainEvent(KindVideoDeleted, AggregateVideo, video.VideoID, occurredAt, snapshotPayload(video))
}

// ReactionPayload 表示表态事件负载。
type ReactionPayload struct {
	VideoID       uuid.UUID `json:"video_id"`
	UserID        uuid.UUID `json:"user_id"`
	Kind          string    `json:"kind"`
	LikesCount    int64     `json:"likes_count"`
	DislikesCount int64     `json:"dislikes_count"`
}

// NewReactionAddedEvent 构造表态新增事件，计数取自同事务内更新后的冗余列。
func NewReactionAddedEvent(video *po.Video, userID uuid.UUID, kind po.ReactionKind, occurredAt time.Time) (*DomainEvent, error) {
	return NewDomainEvent(KindReactionAdded, AggregateVideo, video.VideoID, occurredAt, ReactionPayload{
		VideoID:       video.VideoID,
		UserID:        userID,
		Kind:          string(kind),
		LikesCount:    video.LikesCount,
		DislikesCount: video.DislikesCount,
	})
}

// NewReactionRemovedEvent 构造表态撤销事件。
func NewReactionRemovedEvent(video *po.Video, userID uuid.UUID, kind po.ReactionKind, occurredAt time.Time) (*DomainEvent, error) {
	return NewDomainEvent(KindReactionRemoved, AggregateVideo, video.VideoID, occurredAt, ReactionPayload{
		VideoID:       video.VideoID,
		UserID:        userID,
		Kind:          string(kind),
		LikesCount:    video.LikesCount,
		DislikesCount: video.DislikesCount,
	})
}

// CommentPayload 表示评论创建事件负载。
type CommentPayload struct {
	CommentID uuid.UUID `json:"comment_id"`
	VideoID   uuid.UUID `json:"video_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Title     string    `json:"title"`
}

// NewCommentCreatedEvent 构造评论创建事件。
func NewCommentCreatedEvent(comment *po.Comment, occurredAt time.Time) (*DomainEvent, error) {
	return NewDomainEvent(KindCommentCreated, AggregateComment, comment.CommentID, occurredAt, CommentPayload{
		CommentID: comment.CommentID,
		VideoID:   comment.VideoID,
		AuthorID:  comment.AuthorID,
		Title:     comment.Title,
	})
}
