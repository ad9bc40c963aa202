// Package observability provides OpenTelemetry tracing and RED metrics
// (rate, errors, duration) for tool execution.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // e.g. "localhost:4317"
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns defaults with telemetry disabled; the query server
// must run without a collector.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "tat-mcp-server",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
		Insecure:       true,
	}
}

// Provider manages trace and metric providers and the tool-call
// instruments.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer

	callCounter  metric.Int64Counter
	errorCounter metric.Int64Counter
	durationHist metric.Float64Histogram
}

// New creates an observability provider. With Enabled=false it returns a
// provider backed by the global (noop) otel providers, so callers never
// need nil checks.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	p := &Provider{config: config}

	if !config.Enabled {
		p.tracer = otel.Tracer(config.ServiceName)
		return p, p.initInstruments(otel.Meter(config.ServiceName))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: build resource: %w", err)
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint)}
	if config.Insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("observability: trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("observability: metric exporter: %w", err)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetMeterProvider(p.meterProvider)

	p.tracer = p.tracerProvider.Tracer(config.ServiceName)
	return p, p.initInstruments(p.meterProvider.Meter(config.ServiceName))
}

func (p *Provider) initInstruments(meter metric.Meter) error {
	var err error
	p.callCounter, err = meter.Int64Counter("tat.tool.calls",
		metric.WithDescription("Tool calls served"))
	if err != nil {
		return fmt.Errorf("observability: call counter: %w", err)
	}
	p.errorCounter, err = meter.Int64Counter("tat.tool.errors",
		metric.WithDescription("Tool calls that failed"))
	if err != nil {
		return fmt.Errorf("observability: error counter: %w", err)
	}
	p.durationHist, err = meter.Float64Histogram("tat.tool.duration",
		metric.WithDescription("Tool call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("observability: duration histogram: %w", err)
	}
	return nil
}

// RecordToolCall records one tool execution.
func (p *Provider) RecordToolCall(ctx context.Context, tool string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("tool", tool))
	p.callCounter.Add(ctx, 1, attrs)
	if err != nil {
		p.errorCounter.Add(ctx, 1, attrs)
	}
	p.durationHist.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("observability: tracer shutdown: %w", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("observability: meter shutdown: %w", err)
		}
	}
	return nil
}
