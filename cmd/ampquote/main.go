package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"ampquote/pkg/config"
	"ampquote/pkg/featureflags"
	"ampquote/pkg/health"
	"ampquote/pkg/kv"
	"ampquote/pkg/logger"
	"ampquote/pkg/otelcol"
	"ampquote/pkg/profiling"
	"ampquote/pkg/redis"
	"ampquote/pkg/server"
	"ampquote/pkg/task"
	"ampquote/services/checkout"
	"ampquote/services/gate"
	"ampquote/services/license"
	"ampquote/services/token"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		redis.Module,
		kv.Module,
		otelcol.Module,
		profiling.Module,
		featureflags.Module,
		task.Client,
		server.Module,
		health.Module,
		fx.Provide(provideSnowflakeNode),
		license.Module,
		token.Module,
		checkout.Module,
		gate.Module,
		fx.Invoke(registerHealthRoutes),
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func registerHealthRoutes(engine *gin.Engine, svc health.HealthService) {
	engine.GET("/healthz", svc.Liveness)
	engine.GET("/readyz", svc.Readiness)
}
