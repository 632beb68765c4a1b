package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Settings controls metric export. With Enabled false the meter provider is
// a no-op and every Record* helper returns immediately, so the SDK works
// unchanged with metrics off.
type Settings struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	Environment string
}

type clientMetrics struct {
	apiRequestCounter  metric.Int64Counter
	pollTickCounter    metric.Int64Counter
	flowEventCounter   metric.Int64Counter
	sessionTransitions metric.Int64Counter
}

var (
	metricsMu sync.RWMutex
	metrics   *clientMetrics
)

// InitMetrics wires the otel meter provider and the client's counters.
func InitMetrics(ctx context.Context, settings Settings, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !settings.Enabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(settings.Endpoint)}
	if settings.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", settings.ServiceName),
			attribute.String("deployment.environment", settings.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("kiraye-cli")
	apiCounter, err := meter.Int64Counter("api.client.requests")
	if err != nil {
		return nil, err
	}
	pollCounter, err := meter.Int64Counter("payment.poll.ticks")
	if err != nil {
		return nil, err
	}
	flowCounter, err := meter.Int64Counter("payment.flow.events")
	if err != nil {
		return nil, err
	}
	sessionCounter, err := meter.Int64Counter("session.transitions")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	metrics = &clientMetrics{
		apiRequestCounter:  apiCounter,
		pollTickCounter:    pollCounter,
		flowEventCounter:   flowCounter,
		sessionTransitions: sessionCounter,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", settings.Endpoint)
	return mp, nil
}

// RecordAPIRequest counts one outbound API call by method, path and outcome.
func RecordAPIRequest(method, path, outcome string) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.apiRequestCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordPollTick counts one verification poll tick by outcome.
func RecordPollTick(outcome string) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.pollTickCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordFlowEvent counts one payment-flow transition.
func RecordFlowEvent(event string) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.flowEventCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("event", event)))
}

// RecordSessionTransition counts one session state-machine transition.
func RecordSessionTransition(from, to string) {
	metricsMu.RLock()
	m := metrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.sessionTransitions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}
