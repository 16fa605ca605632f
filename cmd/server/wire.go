//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

//go:generate go run github.com/google/wire/cmd/wire

package main

import (
	"context"

	"github.com/SberTube/sbertube-api/internal/controllers"
	configloader "github.com/SberTube/sbertube-api/internal/infrastructure/configloader"
	httpserver "github.com/SberTube/sbertube-api/internal/infrastructure/httpserver"
	"github.com/SberTube/sbertube-api/internal/infrastructure/mediaprobe"
	"github.com/SberTube/sbertube-api/internal/infrastructure/mediastore"
	"github.com/SberTube/sbertube-api/internal/repositories"
	"github.com/SberTube/sbertube-api/internal/services"
	outboxtasks "github.com/SberTube/sbertube-api/internal/tasks/outbox"

	"github.com/bionicotaku/lingo-utils/gcjwt"
	"github.com/bionicotaku/lingo-utils/gclog"
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	obswire "github.com/bionicotaku/lingo-utils/observability"
	"github.com/bionicotaku/lingo-utils/pgxpoolx"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2"
	"github.com/google/wire"
)

// wireApp 构建整个 Kratos 应用，分阶段装配依赖。
//
// 依赖注入顺序:
//  1. 配置加载: configloader.ProviderSet 解析配置并派生组件配置
//  2. 基础设施: gclog → observability → gcjwt → pgxpoolx → txmanager → 媒体存储/探测
//  3. 业务层: repositories → services → controllers
//  4. 服务器: httpserver.ProviderSet 组装 HTTP Server
//  5. 应用: newApp 创建 Kratos App
func wireApp(context.Context, configloader.Params) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet, // 配置加载与解析
		gclog.ProviderSet,        // 结构化日志
		gcjwt.ProviderSet,        // JWT 认证中间件
		obswire.ProviderSet,      // OpenTelemetry 追踪和指标
		pgxpoolx.ProviderSet,     // PostgreSQL 连接池
		txmanager.ProviderSet,    // 事务管理器
		gcpubsub.ProviderSet,     // Pub/Sub 发布
		mediastore.ProviderSet,   // 媒体文件落盘
		mediaprobe.ProviderSet,   // ffprobe 时长探测
		httpserver.ProviderSet,   // HTTP Server
		repositories.ProviderSet, // 数据访问层
		wire.Bind(new(services.VideoRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.UserRepo), new(*repositories.UserRepository)),
		wire.Bind(new(services.ReactionRepo), new(*repositories.ReactionRepository)),
		wire.Bind(new(services.CommentRepo), new(*repositories.CommentRepository)),
		wire.Bind(new(services.OutboxEnqueuer), new(*repositories.OutboxRepository)),
		wire.Bind(new(services.MediaStore), new(*mediastore.LocalStore)),
		wire.Bind(new(services.DurationProber), new(*mediaprobe.FFProbe)),
		services.ProviderSet, // 业务逻辑层
		wire.Bind(new(services.LifecycleServiceInterface), new(*services.LifecycleService)),
		wire.Bind(new(services.QueryServiceInterface), new(*services.QueryService)),
		wire.Bind(new(services.ReactionServiceInterface), new(*services.ReactionService)),
		wire.Bind(new(services.CommentServiceInterface), new(*services.CommentService)),
		wire.Bind(new(services.WatchServiceInterface), new(*services.WatchService)),
		controllers.ProviderSet, // 控制器层（HTTP handlers）
		outboxtasks.ProvideRunner,
		newApp, // 组装 Kratos 应用
	))
}
