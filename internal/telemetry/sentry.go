// Package telemetry provides Sentry-based tracing and error capture.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "searchbench"

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
}

// Init initializes Sentry and returns a function that flushes pending
// events. An empty DSN disables reporting and returns a no-op flush.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			if ctx.Span.Name == "GET /health" {
				return 0.0
			}
			var emptySpanID sentry.SpanID
			if ctx.Span.ParentSpanID != emptySpanID {
				if ctx.Span.Sampled.Bool() {
					return 1.0
				}
				return 0.0
			}
			return cfg.TracesSampleRate
		}),
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing without reporting): %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: initialized (environment: %s, sample_rate: %.2f)", cfg.Environment, cfg.TracesSampleRate)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

// SpanAttributes contains common attributes for benchmark spans.
type SpanAttributes struct {
	BatchID   string
	Algorithm string
	Operation string
	Count     int
}

func (a SpanAttributes) apply(span *sentry.Span) {
	if a.BatchID != "" {
		span.SetTag("batch_id", a.BatchID)
	}
	if a.Algorithm != "" {
		span.SetTag("algorithm", a.Algorithm)
	}
	if a.Operation != "" {
		span.SetData("operation", a.Operation)
	}
	if a.Count > 0 {
		span.SetData("array_count", a.Count)
	}
}

// Span wraps sentry.Span. The zero value is a no-op.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetTag tags the span once its value is known, e.g. a batch id.
func (s *Span) SetTag(key, value string) {
	if s.inner != nil {
		s.inner.SetTag(key, value)
	}
}

// SetError marks the span as failed and captures err.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	CaptureError(s.inner.Context(), err)
}

// Context returns the span's context.
func (s *Span) Context() context.Context {
	if s.inner != nil {
		return s.inner.Context()
	}
	return context.Background()
}

// StartSpan starts a child of the span in ctx, or a new transaction when
// ctx carries none.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}
	attrs.apply(span)

	return span.Context(), &Span{inner: span}
}

// Trace runs fn inside a span and records its error, if any.
func Trace(ctx context.Context, name string, attrs SpanAttributes, fn func(ctx context.Context) error) error {
	ctx, span := StartSpan(ctx, name, attrs)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.SetError(err)
	} else {
		span.inner.Status = sentry.SpanStatusOK
	}
	return err
}

// CaptureError reports err through the hub in ctx, falling back to the
// global hub.
func CaptureError(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb adds a breadcrumb to the current scope.
func AddBreadcrumb(ctx context.Context, category, message string) {
	breadcrumb := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
		return
	}
	sentry.AddBreadcrumb(breadcrumb)
}
