// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 Controller 层序列化为 API 响应，隔离内部数据结构。
package vo

import (
	"time"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/google/uuid"
)

// UserView 封装对外暴露的用户信息。
// 仅携带展示所需字段，不包含任何认证相关数据。
type UserView struct {
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserView 从领域实体构造用户 VO。
func NewUserView(user *po.User) *UserView {
	if user == nil {
		return nil
	}
	return &UserView{
		UserID:    user.UserID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}
