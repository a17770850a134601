// Package telemetry wires OpenTelemetry tracing and metrics for the RideMyWay
// service. Metrics are exported through a Prometheus registry owned by the
// Provider; traces go to an OTLP collector when an endpoint is configured.
package telemetry

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the telemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// OTLPEndpoint is the OTLP exporter endpoint for traces.
	// Leave empty to disable trace export.
	OTLPEndpoint string

	// SamplingRate is the trace sampling rate (0.0-1.0).
	SamplingRate float64

	Enabled bool
}

// DefaultConfig returns a default telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "ridemyway",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		SamplingRate:   1.0,
		Enabled:        true,
	}
}

// Recorder is what the ride services report to. *Provider implements it;
// Nop discards everything.
type Recorder interface {
	RecordDecision(ctx context.Context, decision, outcome string, duration time.Duration)
	RecordSweep(ctx context.Context, rides, requests int64, err error)
	RecordLogin(ctx context.Context, success bool)
	RecordRateLimit(ctx context.Context, action string)
}

// Nop is a Recorder that does nothing.
type Nop struct{}

func (Nop) RecordDecision(context.Context, string, string, time.Duration) {}
func (Nop) RecordSweep(context.Context, int64, int64, error)              {}
func (Nop) RecordLogin(context.Context, bool)                             {}
func (Nop) RecordRateLimit(context.Context, string)                       {}

// Provider manages OpenTelemetry tracer and meter providers.
type Provider struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *promclient.Registry
	tracer         trace.Tracer
	meter          metric.Meter

	decisionCounter  metric.Int64Counter
	decisionDuration metric.Float64Histogram
	sweptRides       metric.Int64Counter
	sweptRequests    metric.Int64Counter
	sweepFailures    metric.Int64Counter
	loginCounter     metric.Int64Counter
	rateLimitCounter metric.Int64Counter
}

var _ Recorder = (*Provider)(nil)

// NewProvider creates a new telemetry provider.
func NewProvider(cfg Config) (*Provider, error) {
	p := &Provider{config: cfg, registry: promclient.NewRegistry()}
	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	if err := p.setupTracing(res); err != nil {
		return nil, err
	}

	if err := p.setupMetrics(res); err != nil {
		return nil, err
	}

	if err := p.initMetrics(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Provider) setupTracing(res *resource.Resource) error {
	var sampler sdktrace.Sampler
	if p.config.SamplingRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if p.config.SamplingRate <= 0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(p.config.SamplingRate)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(res),
	}

	if p.config.OTLPEndpoint != "" {
		exporter, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(p.tracerProvider)

	p.tracer = p.tracerProvider.Tracer(p.config.ServiceName)

	return nil
}

func (p *Provider) setupMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New(prometheus.WithRegisterer(p.registry))
	if err != nil {
		return err
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.meter = p.meterProvider.Meter(p.config.ServiceName)

	return nil
}

func (p *Provider) initMetrics() error {
	var err error

	p.decisionCounter, err = p.meter.Int64Counter(
		"ridemyway.request.decisions.total",
		metric.WithDescription("Ride request decisions by decision and outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	p.decisionDuration, err = p.meter.Float64Histogram(
		"ridemyway.request.decision.duration",
		metric.WithDescription("Time spent deciding a ride request"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	p.sweptRides, err = p.meter.Int64Counter(
		"ridemyway.sweeper.rides.deleted",
		metric.WithDescription("Expired rides removed by the sweeper"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	p.sweptRequests, err = p.meter.Int64Counter(
		"ridemyway.sweeper.requests.deleted",
		metric.WithDescription("Requests removed along with expired rides"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	p.sweepFailures, err = p.meter.Int64Counter(
		"ridemyway.sweeper.failures.total",
		metric.WithDescription("Sweeper runs that failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	p.loginCounter, err = p.meter.Int64Counter(
		"ridemyway.login.total",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	p.rateLimitCounter, err = p.meter.Int64Counter(
		"ridemyway.rate_limit.total",
		metric.WithDescription("Total number of rate limit events"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the telemetry providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Tracer returns the tracer instance.
func (p *Provider) Tracer() trace.Tracer {
	if p.tracer == nil {
		return otel.Tracer(p.config.ServiceName)
	}
	return p.tracer
}

// Handler serves the Prometheus exposition of this provider's metrics.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// ---- Metric Recording Methods ----

func (p *Provider) RecordDecision(ctx context.Context, decision, outcome string, duration time.Duration) {
	if p.decisionCounter == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("decision", decision),
		attribute.String("outcome", outcome),
	)
	p.decisionCounter.Add(ctx, 1, attrs)
	p.decisionDuration.Record(ctx, duration.Seconds(), attrs)
}

func (p *Provider) RecordSweep(ctx context.Context, rides, requests int64, err error) {
	if p.sweptRides == nil {
		return
	}
	if err != nil {
		p.sweepFailures.Add(ctx, 1)
		return
	}
	p.sweptRides.Add(ctx, rides)
	p.sweptRequests.Add(ctx, requests)
}

func (p *Provider) RecordLogin(ctx context.Context, success bool) {
	if p.loginCounter == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	p.loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (p *Provider) RecordRateLimit(ctx context.Context, action string) {
	if p.rateLimitCounter == nil {
		return
	}
	p.rateLimitCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}
