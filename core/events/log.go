package events

import (
	"log/slog"

	"ashforge/core/types"
)

// payloader is implemented by events that render a structured payload.
type payloader interface {
	Event() *types.Event
}

// SlogEmitter writes every emitted event to a structured logger so the event
// log is reconstructable from the service output.
type SlogEmitter struct {
	Logger *slog.Logger
}

// Emit implements the Emitter interface.
func (e SlogEmitter) Emit(evt Event) {
	if e.Logger == nil || evt == nil {
		return
	}
	attrs := []any{slog.String("event", evt.EventType())}
	if p, ok := evt.(payloader); ok {
		if rendered := p.Event(); rendered != nil {
			for k, v := range rendered.Attributes {
				attrs = append(attrs, slog.String(k, v))
			}
		}
	}
	e.Logger.Info("event", attrs...)
}

// MultiEmitter fans a single event out to several emitters.
type MultiEmitter []Emitter

// Emit implements the Emitter interface.
func (m MultiEmitter) Emit(evt Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(evt)
		}
	}
}

// Recorder collects events in memory for tests and reconciliation tooling.
type Recorder struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	r.Events = append(r.Events, evt)
}
