package services

import "github.com/google/wire"

// ProviderSet 暴露 Services 层的构造函数供 Wire 依赖注入使用。
// 包含所有 Usecase 的构造器。
var ProviderSet = wire.NewSet(
	NewLifecycleService,
	NewQueryService,
	NewReactionService,
	NewCommentService,
	NewWatchService,
)
