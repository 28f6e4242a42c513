// Package observability installs the process-wide OpenTelemetry tracer provider.
package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

// TracingConfig is read from the standard OTEL_* variables plus OTEL_ENABLED.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string
	// Exporter is "otlp", "stdout" or "none". Empty picks otlp when Endpoint is
	// set and stdout otherwise.
	Exporter    string
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64
}

func TracingConfigFromEnv(service, environment, version string) TracingConfig {
	if service = strings.TrimSpace(service); service == "" {
		service = "studyhub"
	}
	return TracingConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: service,
		Environment: environment,
		Version:     version,
		Exporter:    strings.ToLower(envutil.String("OTEL_TRACES_EXPORTER", "")),
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		Headers:     headerMap(envutil.List("OTEL_EXPORTER_OTLP_HEADERS", nil)),
		SampleRatio: clampRatio(envutil.Float("OTEL_SAMPLER_RATIO", 0.1)),
	}
}

// headerMap turns ["k=v", ...] into a map, skipping malformed pairs.
func headerMap(pairs []string) map[string]string {
	var out map[string]string
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	return out
}

func clampRatio(r float64) float64 {
	return min(max(r, 0), 1)
}

// Setup installs the tracer provider and W3C propagators. The returned shutdown
// flushes pending spans and is a no-op when tracing is disabled.
func Setup(ctx context.Context, log *logger.Logger, cfg TracingConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}
	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return noop, fmt.Errorf("trace exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.Version),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return noop, fmt.Errorf("trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if log != nil {
		log.Info("tracing enabled", "service", cfg.ServiceName, "exporter", exporterName(cfg), "sample_ratio", cfg.SampleRatio)
	}
	return tp.Shutdown, nil
}

func exporterName(cfg TracingConfig) string {
	if cfg.Exporter != "" {
		return cfg.Exporter
	}
	if cfg.Endpoint != "" {
		return "otlp"
	}
	return "stdout"
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch name := exporterName(cfg); name {
	case "none":
		return nil, nil
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp":
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown OTEL_TRACES_EXPORTER %q", name)
	}
}
