// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// User 表示 tube.users 表的数据库实体。
// 账户注册与认证由网关侧系统负责，本服务仅读取并在上传时刷新触达时间。
type User struct {
	UserID    uuid.UUID // 主键
	Email     string    // 邮箱（唯一），作为作者归属判定依据
	Username  string    // 展示用户名
	CreatedAt time.Time // 创建时间
	UpdatedAt time.Time // 最近更新时间
}
