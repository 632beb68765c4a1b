package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// InitLogging wires an OTLP log pipeline and returns an slog handler
// bridged to it. Disabled settings return a nil provider and handler; the
// caller keeps its plain stderr handler in that case.
func InitLogging(ctx context.Context, settings Settings) (*sdklog.LoggerProvider, slog.Handler, error) {
	if !settings.Enabled {
		return nil, nil, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(settings.Endpoint)}
	if settings.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp log exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", settings.ServiceName),
			attribute.String("deployment.environment", settings.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create log resource: %w", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	handler := otelslog.NewHandler("kiraye-cli", otelslog.WithLoggerProvider(lp))
	return lp, handler, nil
}
