// Package telemetry wraps Sentry tracing behind a small span API.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serverName = "docchat"

// Config controls Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
}

// Init sets up the Sentry client and returns a flush function. An empty DSN
// disables telemetry entirely; an init failure logs and continues, since the
// service must not depend on the telemetry backend being reachable.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	rate := cfg.TracesSampleRate
	if rate == 0 {
		rate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      env,
		EnableTracing:    true,
		TracesSampleRate: rate,
		Debug:            cfg.Debug,
		ServerName:       serverName,
		TracesSampler:    healthAwareSampler(rate),
	})
	if err != nil {
		log.Printf("sentry: init failed, continuing without tracing: %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: tracing enabled (environment=%s sample_rate=%.2f)", env, rate)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

// healthAwareSampler drops health-check transactions and makes child spans
// inherit their parent's sampling decision.
func healthAwareSampler(rate float64) sentry.TracesSampler {
	return func(sc sentry.SamplingContext) float64 {
		if sc.Span.Name == "GET /health" {
			return 0.0
		}
		var zero sentry.SpanID
		if sc.Span.ParentSpanID != zero {
			if sc.Span.Sampled.Bool() {
				return 1.0
			}
			return 0.0
		}
		return rate
	}
}

// SpanAttributes carries the tags shared by service-level spans.
type SpanAttributes struct {
	UserID     string
	DocumentID string
	Operation  string
}

// Span is a thin wrapper over sentry.Span that tolerates a nil inner span.
type Span struct {
	inner *sentry.Span
}

// StartSpan opens a child span under the transaction in ctx, or a fresh
// transaction when there is none (CLI paths, background work).
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	if attrs.UserID != "" {
		span.SetTag("user_id", attrs.UserID)
	}
	if attrs.DocumentID != "" {
		span.SetTag("document_id", attrs.DocumentID)
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}

	return span.Context(), &Span{inner: span}
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetStatus overrides the span status.
func (s *Span) SetStatus(status sentry.SpanStatus) {
	if s.inner != nil {
		s.inner.Status = status
	}
}

// SetError marks the span failed and reports the error.
func (s *Span) SetError(err error) {
	if s.inner == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// Context returns the context carrying this span.
func (s *Span) Context() context.Context {
	if s.inner != nil {
		return s.inner.Context()
	}
	return context.Background()
}
