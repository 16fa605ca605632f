// Package controllers 实现 HTTP 传输层入口，负责请求解析、身份提取与超时控制。
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/SberTube/sbertube-api/internal/metadata"
	"github.com/SberTube/sbertube-api/internal/services"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写模型命令 Handler。
	HandlerTypeCommand
	// HandlerTypeQuery 表示读模型查询 Handler。
	HandlerTypeQuery
	// HandlerTypeUpload 表示携带媒体文件的上传 Handler，允许更长的处理窗口。
	HandlerTypeUpload
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
	Upload  time.Duration
}

const (
	fallbackDefaultTimeout = 5 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
	fallbackUploadTimeout  = 60 * time.Second
	headerUserInfo         = "x-apigateway-api-userinfo"
	headerIdempotencyKey   = "x-md-idempotency-key"
)

// BaseHandler 提供公共的超时、Metadata 解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		if timeouts.Command > 0 {
			timeouts.Default = timeouts.Command
		} else if timeouts.Query > 0 {
			timeouts.Default = timeouts.Query
		} else {
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		timeouts.Query = fallbackQueryTimeout
		if timeouts.Default > 0 {
			timeouts.Query = timeouts.Default
		}
	}
	if timeouts.Upload <= 0 {
		timeouts.Upload = fallbackUploadTimeout
	}
	return &BaseHandler{timeouts: timeouts}
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	case HandlerTypeUpload:
		timeout = h.timeouts.Upload
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// ExtractMetadata 解析请求中的网关身份与幂等 Header。
func (h *BaseHandler) ExtractMetadata(header http.Header) metadata.HandlerMetadata {
	meta := metadata.HandlerMetadata{
		IdempotencyKey: strings.TrimSpace(header.Get(headerIdempotencyKey)),
	}
	rawUserInfo := strings.TrimSpace(header.Get(headerUserInfo))
	meta.RawUserInfo = rawUserInfo
	if rawUserInfo != "" {
		identity, err := metadata.ExtractIdentityFromUserInfo(rawUserInfo)
		if err != nil || (identity.Subject == "" && identity.Email == "") {
			meta.InvalidUserInfo = true
		} else {
			meta.UserID = identity.Subject
			meta.Email = identity.Email
		}
	}
	return meta
}

// Identity 将解析到的 Metadata 转换为服务层身份。
func (h *BaseHandler) Identity(meta metadata.HandlerMetadata) services.Identity {
	return services.Identity{
		Subject: meta.UserID,
		Email:   meta.Email,
	}
}

// InjectHandlerMetadata 将解析结果注入到 Context，供后续层访问。
func InjectHandlerMetadata(ctx context.Context, meta metadata.HandlerMetadata) context.Context {
	return metadata.Inject(ctx, meta)
}

// HandlerMetadataFromContext 读取上游注入的 HandlerMetadata。
func HandlerMetadataFromContext(ctx context.Context) (metadata.HandlerMetadata, bool) {
	return metadata.FromContext(ctx)
}
