package vo

import (
	"time"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/google/uuid"
)

// ReactionView 表示视频下的单条表态记录。
type ReactionView struct {
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentView 表示视频下的单条评论。
type CommentView struct {
	CommentID  uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	LikesCount int64      `json:"likesCount"`
	IsEdited   bool       `json:"isEdited"`
	Author     *UserView  `json:"author"`
	CreatedAt  time.Time  `json:"createdAt"`
	EditedAt   *time.Time `json:"editedAt,omitempty"`
}

// NewCommentView 从联表查询行构造评论 VO。
func NewCommentView(row *po.CommentWithAuthor) *CommentView {
	if row == nil {
		return nil
	}
	return &CommentView{
		CommentID:  row.CommentID,
		Title:      row.Title,
		Body:       row.Body,
		LikesCount: row.LikesCount,
		IsEdited:   row.IsEdited,
		Author: &UserView{
			UserID:   row.AuthorID,
			Email:    row.AuthorEmail,
			Username: row.AuthorUsername,
		},
		CreatedAt: row.CreatedAt,
		EditedAt:  row.EditedAt,
	}
}

// VideoView 封装视频详情的完整只读视图。
// 计数字段直接取自主表冗余列，列表字段保证非 nil，空集合序列化为 []。
type VideoView struct {
	VideoID       uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	ShortBody     string         `json:"shortBody"`
	Path          string         `json:"path"`
	TimeToWatch   int64          `json:"timeToWatch"`
	WatchedTime   int64          `json:"watchedTime"`
	IsViewed      bool           `json:"isViewed"`
	Author        *UserView      `json:"author"`
	Comments      []CommentView  `json:"comments"`
	Likes         []ReactionView `json:"likes"`
	Dislikes      []ReactionView `json:"dislikes"`
	LikesCount    int64          `json:"likesCount"`
	DislikesCount int64          `json:"dislikesCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// NewVideoView 从视频实体及其关联图构造详情 VO。
// author、comments、reactions 允许为空，投影结果始终完整。
func NewVideoView(video *po.Video, author *po.User, comments []po.CommentWithAuthor, reactions []po.ReactionWithUser) *VideoView {
	if video == nil {
		return nil
	}
	view := &VideoView{
		VideoID:       video.VideoID,
		Title:         video.Title,
		Body:          video.Body,
		ShortBody:     video.ShortBody,
		Path:          video.Path,
		TimeToWatch:   video.TimeToWatchSeconds,
		WatchedTime:   video.WatchedTimeSeconds,
		IsViewed:      video.IsViewed,
		Author:        NewUserView(author),
		Comments:      make([]CommentView, 0, len(comments)),
		Likes:         make([]ReactionView, 0),
		Dislikes:      make([]ReactionView, 0),
		LikesCount:    video.LikesCount,
		DislikesCount: video.DislikesCount,
		CreatedAt:     video.CreatedAt,
		UpdatedAt:     video.UpdatedAt,
	}
	for i := range comments {
		view.Comments = append(view.Comments, *NewCommentView(&comments[i]))
	}
	for _, r := range reactions {
		entry := ReactionView{
			UserID:    r.UserID,
			Username:  r.UserUsername,
			CreatedAt: r.CreatedAt,
		}
		switch r.Kind {
		case po.ReactionLike:
			view.Likes = append(view.Likes, entry)
		case po.ReactionDislike:
			view.Dislikes = append(view.Dislikes, entry)
		}
	}
	return view
}

// VideoDeleted 封装视频删除后的响应信息。
type VideoDeleted struct {
	VideoID   uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	DeletedAt time.Time `json:"deletedAt"`
}

// NewVideoDeleted 构造删除响应 VO。
func NewVideoDeleted(video *po.Video, deletedAt time.Time) *VideoDeleted {
	if video == nil {
		return nil
	}
	return &VideoDeleted{
		VideoID:   video.VideoID,
		Title:     video.Title,
		DeletedAt: deletedAt,
	}
}
