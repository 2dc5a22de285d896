package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"ampquote/pkg/config"
	"ampquote/pkg/logger"
	"ampquote/pkg/redis"
	"ampquote/pkg/task"
	"ampquote/services/notification"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		redis.Module,
		task.Server,
		notification.WorkerModule,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
