package telemetry

import (
	"context"
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
)

// InstrumentationName names the tracer used for build spans.
const InstrumentationName = "go.trai.ch/emmet"

// Provider owns the tracer provider of one build run.
type Provider struct {
	tp      *sdktrace.TracerProvider
	closers []io.Closer
}

type config struct {
	traceFile string
	renderers []ports.Renderer
}

// Option configures a Provider.
type Option func(*config)

// WithTraceFile exports finished spans as JSON to path.
func WithTraceFile(path string) Option {
	return func(c *config) {
		c.traceFile = path
	}
}

// WithRenderer forwards spans to r.
func WithRenderer(r ports.Renderer) Option {
	return func(c *config) {
		c.renderers = append(c.renderers, r)
	}
}

// NewProvider creates a Provider. Without options spans are recorded and
// dropped.
func NewProvider(ctx context.Context, opts ...Option) (*Provider, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Provider{}
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "emmet"))),
	}

	if cfg.traceFile != "" {
		f, err := os.Create(cfg.traceFile)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create trace file"), "path", cfg.traceFile)
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
		if err != nil {
			_ = f.Close()
			return nil, zerr.Wrap(err, "failed to create trace exporter")
		}
		p.closers = append(p.closers, f)
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exporter))
	}

	for _, r := range cfg.renderers {
		if err := r.Start(ctx); err != nil {
			return nil, errors.Join(zerr.Wrap(err, "failed to start renderer"), p.closeAll())
		}
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(NewBridge(r)))
	}

	p.tp = sdktrace.NewTracerProvider(tpOpts...)
	return p, nil
}

// Tracer returns the tracer for build spans.
func (p *Provider) Tracer() trace.Tracer {
	return p.tp.Tracer(InstrumentationName)
}

// Shutdown flushes exporters, stops renderers and closes the trace file.
func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.tp.Shutdown(ctx)
	return errors.Join(err, p.closeAll())
}

func (p *Provider) closeAll() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	p.closers = nil
	return errors.Join(errs...)
}
