package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/javelin/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor. It logs phase boundaries at debug level and
// keeps the timing of every finished span.
type Bridge struct {
	logger ports.Logger

	mu      sync.Mutex
	timings []PhaseTiming
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{
		logger: logger,
	}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if b.logger == nil {
		return
	}
	if !s.SpanContext().IsValid() {
		return
	}

	if parentSpan := trace.SpanFromContext(parent); parentSpan.SpanContext().IsValid() {
		b.logger.Debug(fmt.Sprintf("phase %s started (parent %s)", s.Name(), parentSpan.SpanContext().SpanID()))
		return
	}
	b.logger.Debug(fmt.Sprintf("phase %s started", s.Name()))
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "phase failed"
		}
		err = errors.New(desc)
	}

	timing := PhaseTiming{
		SpanID:   sc.SpanID().String(),
		Name:     s.Name(),
		Start:    s.StartTime(),
		Duration: s.EndTime().Sub(s.StartTime()),
		Err:      err,
	}
	if p := s.Parent(); p.IsValid() {
		timing.ParentID = p.SpanID().String()
	}

	b.mu.Lock()
	b.timings = append(b.timings, timing)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug(timing.String())
	}
}

// Timings returns the finished phases in completion order.
func (b *Bridge) Timings() []PhaseTiming {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PhaseTiming, len(b.timings))
	copy(out, b.timings)
	return out
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
