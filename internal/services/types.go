// Package services 包含应用业务用例的编排逻辑。
// 该层负责协调 Repository 与基础设施组件，实现核心业务规则，不直接依赖传输层细节。
package services

import (
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
)

// 业务错误原因码，随错误体返回给网关与客户端。
const (
	ReasonVideoNotFound    = "VIDEO_NOT_FOUND"
	ReasonUserNotFound     = "USER_NOT_FOUND"
	ReasonCommentNotFound  = "COMMENT_NOT_FOUND"
	ReasonVideoTitleTaken  = "VIDEO_TITLE_TAKEN"
	ReasonNotVideoOwner    = "NOT_VIDEO_OWNER"
	ReasonNotCommentOwner  = "NOT_COMMENT_OWNER"
	ReasonInvalidArgument  = "INVALID_ARGUMENT"
	ReasonMediaUnreadable  = "MEDIA_UNREADABLE"
	ReasonQueryTimeout     = "QUERY_TIMEOUT"
	ReasonOperationFailed  = "VIDEO_OPERATION_FAILED"
)

// ErrVideoNotFound 是当视频未找到时返回的哨兵错误。
var ErrVideoNotFound = errors.NotFound(ReasonVideoNotFound, "video not found")

// ErrUserNotFound 是当调用者身份无法解析为已注册用户时返回的哨兵错误。
var ErrUserNotFound = errors.NotFound(ReasonUserNotFound, "user not found")

// ErrCommentNotFound 是当评论未找到时返回的哨兵错误。
var ErrCommentNotFound = errors.NotFound(ReasonCommentNotFound, "comment not found")

// Identity 表示经网关认证后的调用者身份。
// 作者归属以邮箱精确比对判定，由控制器显式传入而非隐藏在 Context 中。
type Identity struct {
	Subject string
	Email   string
}

// Valid 判断身份是否携带可用于归属判定的邮箱。
func (id Identity) Valid() bool {
	return strings.TrimSpace(id.Email) != ""
}
