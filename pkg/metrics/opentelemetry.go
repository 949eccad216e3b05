package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/webhookx-io/hookshot"
	"github.com/webhookx-io/hookshot/config/modules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	prefix = "hookshot."
)

func newHTTPExporter(endpoint string) (metric.Exporter, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(endpoint),
	}
	return otlpmetrichttp.New(context.Background(), opts...)
}

func newGRPCExporter(endpoint string) (metric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	}
	return otlpmetricgrpc.New(context.Background(), opts...)
}

func SetupOpentelemetry(attributes map[string]string, cfg modules.OpentelemetryMetrics, metrics *Metrics) error {
	var err error
	var exporter metric.Exporter
	switch cfg.Protocol {
	case modules.OtlpProtocolHTTP:
		exporter, err = newHTTPExporter(cfg.Endpoint)
	case modules.OtlpProtocolGRPC:
		exporter, err = newGRPCExporter(cfg.Endpoint)
	default:
		err = fmt.Errorf("unsupported protocol: %s", cfg.Protocol)
	}
	if err != nil {
		return fmt.Errorf("failed to setup exporter: %v", err)
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for name, value := range attributes {
		attrs = append(attrs, attribute.String(name, value))
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String("hookshot")),
		resource.WithAttributes(semconv.ServiceVersionKey.String(hookshot.VERSION)),
		resource.WithFromEnv(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return fmt.Errorf("failed to build resource: %w", err)
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(metrics.Interval))),
	)
	otel.SetMeterProvider(meterProvider)

	register(otel.Meter("github.com/webhookx-io/hookshot"), metrics)
	return nil
}

func register(meter api.Meter, metrics *Metrics) {
	// runtime metrics
	metrics.RuntimeGoroutine = NewGauge(meter, prefix+"runtime.num_goroutine", "")
	metrics.RuntimeAlloc = NewGauge(meter, prefix+"runtime.alloc_bytes", "")
	metrics.RuntimeSys = NewGauge(meter, prefix+"runtime.sys_bytes", "")
	metrics.RuntimeHeapObjects = NewGauge(meter, prefix+"runtime.heap_objects", "")
	metrics.RuntimePauseTotalNs = NewGauge(meter, prefix+"runtime.pause_total_ns", "")
	metrics.RuntimeGC = NewGauge(meter, prefix+"runtime.num_gc", "")

	// delivery metrics
	metrics.AttemptTotalCounter = NewCounter(meter, prefix+"attempt.total", "delivery attempts made")
	metrics.AttemptFailedCounter = NewCounter(meter, prefix+"attempt.failed", "delivery attempts that did not succeed")
	metrics.AttemptResponseDurationHistogram = NewHistogram(meter, prefix+"attempt.response.duration", "", "s")
	metrics.DeliveryOutcomeCounter = NewCounter(meter, prefix+"delivery.outcome", "terminal delivery outcomes")

	// capture metrics
	metrics.CaptureCounter = NewCounter(meter, prefix+"capture.total", "")
	metrics.MenuRebuildCounter = NewCounter(meter, prefix+"menu.rebuild", "")
}

func StopOpentelemetry() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return otel.GetMeterProvider().(*metric.MeterProvider).Shutdown(ctx)
}
