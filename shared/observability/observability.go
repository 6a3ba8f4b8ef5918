package observability

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/gin-gonic/gin"
)

// Metrics holds the counters the chat pipeline reports into
type Metrics struct {
	ChatTurns        metric.Int64Counter
	ProviderCalls    metric.Int64Counter
	ProviderFailures metric.Int64Counter
	SpeechCacheHits  metric.Int64Counter
}

// SetupTracing initializes OpenTelemetry tracing with a stdout exporter
func SetupTracing(serviceName string) func() {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("failed to initialize stdouttrace exporter: %v", err)
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

// SetupMetrics initializes the Prometheus exporter and registers the
// application counters. The returned handler serves /metrics.
func SetupMetrics() (*Metrics, gin.HandlerFunc, error) {
	exp, err := otelprom.New()
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	otel.SetMeterProvider(mp)

	meter := mp.Meter("magic-encyclopedia/backend")

	m := &Metrics{}
	if m.ChatTurns, err = meter.Int64Counter("chat_turns_total"); err != nil {
		return nil, nil, err
	}
	if m.ProviderCalls, err = meter.Int64Counter("provider_calls_total"); err != nil {
		return nil, nil, err
	}
	if m.ProviderFailures, err = meter.Int64Counter("provider_failures_total"); err != nil {
		return nil, nil, err
	}
	if m.SpeechCacheHits, err = meter.Int64Counter("speech_cache_hits_total"); err != nil {
		return nil, nil, err
	}

	return m, gin.WrapH(promhttp.Handler()), nil
}
