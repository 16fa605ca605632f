package po

import (
	"time"

	"github.com/google/uuid"
)

// Video 表示 tube.videos 表的数据库实体。
// likes/dislikes 计数为非规范化冗余字段，与 tube.reactions 表在同一事务内同步维护。
type Video struct {
	VideoID            uuid.UUID // 主键
	Title              string    // 标题（全局唯一）
	Body               string    // 完整描述
	ShortBody          string    // 摘要描述
	Path               string    // 媒体文件存储路径
	TimeToWatchSeconds int64     // 视频总时长（秒），上传时由探测器写入
	WatchedTimeSeconds int64     // 已观看进度（秒），单调不减
	IsViewed           bool      // 是否已产生过观看进度
	AuthorID           uuid.UUID // 作者（tube.users 外键）
	LikesCount         int64     // 点赞计数（冗余）
	DislikesCount      int64     // 点踩计数（冗余）
	Version            int64     // 乐观锁版本号
	CreatedAt          time.Time // 创建时间
	UpdatedAt          time.Time // 最近更新时间
}
