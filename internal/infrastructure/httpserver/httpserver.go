// Package httpserver 负责装配入站 HTTP Server 及其中间件栈。
// 包括：追踪、日志、限流、恢复等中间件，以及路由注册。
package httpserver

import (
	"github.com/SberTube/sbertube-api/internal/controllers"
	configloader "github.com/SberTube/sbertube-api/internal/infrastructure/configloader"

	"github.com/bionicotaku/lingo-utils/gcjwt"
	obsTrace "github.com/bionicotaku/lingo-utils/observability/tracing"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metadata"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet 暴露 HTTP Server 的依赖注入入口。
var ProviderSet = wire.NewSet(NewHTTPServer)

// NewHTTPServer 构造配置完整的 Kratos HTTP Server 实例。
//
// 中间件链（按执行顺序）：
// 1. obsTrace.Server() - OpenTelemetry 追踪，自动创建 Span
// 2. recovery.Recovery() - Panic 恢复，防止服务崩溃
// 3. metadata.Server() - 元数据传播，转发配置前缀的 header
// 4. 可选 JWT 校验
// 5. ratelimit.Server() - 限流保护
// 6. logging.Server() - 结构化日志记录（含 trace_id/span_id）
func NewHTTPServer(cfg configloader.ServerConfig, jwt gcjwt.ServerMiddleware, videos *controllers.VideoHandler, comments *controllers.CommentHandler, logger log.Logger) *khttp.Server {
	mws := []middleware.Middleware{
		obsTrace.Server(),
		recovery.Recovery(),
		metadata.Server(metadata.WithPropagatedPrefix(cfg.MetadataKeys...)),
	}
	if jwt != nil {
		mws = append(mws, middleware.Middleware(jwt))
	}
	mws = append(mws,
		ratelimit.Server(),
		logging.Server(logger),
	)

	opts := []khttp.ServerOption{
		khttp.Middleware(mws...),
	}
	if cfg.Network != "" {
		opts = append(opts, khttp.Network(cfg.Network))
	}
	if cfg.Address != "" {
		opts = append(opts, khttp.Address(cfg.Address))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, khttp.Timeout(cfg.Timeout))
	}

	srv := khttp.NewServer(opts...)
	root := srv.Route("/api")
	if videos != nil {
		videos.RegisterRoutes(root)
	}
	if comments != nil {
		comments.RegisterRoutes(root)
	}
	return srv
}
