package otelcol

import (
	"context"

	"ampquote/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"ampquote/pkg/otelcol/exporters"
)

var Module = fx.Module("otelcol",
	fx.Provide(exporters.ProvideHttp),
	fx.Invoke(ProvideTrace),
)

func ProvideTrace(lc fx.Lifecycle, cfg *config.Config, exporter trace.SpanExporter) *trace.TracerProvider {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.AppName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
	))
	if err != nil {
		res = resource.Default()
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := tp.Shutdown(ctx); err != nil {
				zap.L().Warn("failed to shut down tracer provider", zap.Error(err))
			}
			return nil
		},
	})

	return tp
}
