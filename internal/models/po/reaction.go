package po

import (
	"time"

	"github.com/google/uuid"
)

// ReactionKind 表示表态类型。
// 对应数据库 CHECK 约束 kind IN ('like','dislike')。
type ReactionKind string

// 表态类型常量定义
const (
	ReactionLike    ReactionKind = "like"    // 点赞
	ReactionDislike ReactionKind = "dislike" // 点踩
)

// Valid 判断表态类型取值是否合法。
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction 表示 tube.reactions 表的数据库实体。
// (user_id, video_id, kind) 为联合主键，保证同一用户对同一视频的同类表态幂等。
type Reaction struct {
	UserID    uuid.UUID    // 表态用户
	VideoID   uuid.UUID    // 目标视频（级联删除）
	Kind      ReactionKind // 表态类型
	CreatedAt time.Time    // 创建时间
}

// ReactionWithUser 表示表态与其用户的联表查询行。
type ReactionWithUser struct {
	Reaction
	UserEmail    string // 用户邮箱
	UserUsername string // 用户名
}
