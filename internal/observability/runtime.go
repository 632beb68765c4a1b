package observability

import (
	"context"
	"errors"
	"log/slog"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime holds the live otel providers so the process can flush them on
// the way out.
type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	LoggerProvider *sdklog.LoggerProvider

	// Handler is non-nil when log export is enabled; callers route their
	// slog output through it.
	Handler slog.Handler
}

// InitRuntime wires metrics, tracing and log export in one call.
func InitRuntime(ctx context.Context, settings Settings, logger *slog.Logger) (*Runtime, error) {
	mp, err := InitMetrics(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	tp, err := InitTracing(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	lp, handler, err := InitLogging(ctx, settings)
	if err != nil {
		return nil, err
	}
	return &Runtime{MeterProvider: mp, TracerProvider: tp, LoggerProvider: lp, Handler: handler}, nil
}

// Shutdown flushes and stops every provider. Safe on a nil Runtime.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.MeterProvider != nil {
		if err := r.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.TracerProvider != nil {
		if err := r.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.LoggerProvider != nil {
		if err := r.LoggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
