package po

import (
	"time"

	"github.com/google/uuid"
)

// Comment 表示 tube.comments 表的数据库实体。
// likes_count 为非规范化冗余字段，与 tube.comment_likes 表同事务维护。
type Comment struct {
	CommentID  uuid.UUID  // 主键
	VideoID    uuid.UUID  // 所属视频（级联删除）
	AuthorID   uuid.UUID  // 评论作者
	Title      string     // 评论标题
	Body       string     // 评论正文
	LikesCount int64      // 点赞计数（冗余）
	IsEdited   bool       // 是否被编辑过
	CreatedAt  time.Time  // 创建时间
	EditedAt   *time.Time // 最近一次编辑时间
}

// CommentWithAuthor 表示评论与其作者的联表查询行。
type CommentWithAuthor struct {
	Comment
	AuthorEmail    string // 作者邮箱
	AuthorUsername string // 作者用户名
}
