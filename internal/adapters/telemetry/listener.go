// Package telemetry records builds as OpenTelemetry traces.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
)

// Attribute keys set on spans and span events.
const (
	AttrProject  = attribute.Key("emmet.project")
	AttrTarget   = attribute.Key("emmet.target")
	AttrTask     = attribute.Key("emmet.task")
	AttrLocation = attribute.Key("emmet.location")
	AttrLevel    = attribute.Key("emmet.level")
	AttrMessage  = attribute.Key("emmet.message")
	AttrReason   = attribute.Key("emmet.reason")
)

var _ ports.Listener = (*Listener)(nil)

type frame struct {
	ctx  context.Context
	span trace.Span
}

// Listener turns build events into spans: one for the build, a child for each
// target and a grandchild for each task. Targets executed through 'call' nest
// under the calling task.
type Listener struct {
	tracer trace.Tracer
	stack  []frame
}

// NewListener creates a Listener starting spans on tracer.
func NewListener(tracer trace.Tracer) *Listener {
	return &Listener{tracer: tracer}
}

// OnEvent implements ports.Listener.
func (l *Listener) OnEvent(event domain.Event) error {
	switch event.Kind {
	case domain.BuildStarted:
		l.start("build "+event.Project, event, AttrProject.String(event.Project))
	case domain.TargetStarted:
		l.start(event.Target, event,
			AttrTarget.String(event.Target),
			AttrLocation.String(event.Location.String()),
		)
	case domain.TaskStarted:
		l.start(event.Task, event,
			AttrTask.String(event.Task),
			AttrTarget.String(event.Target),
			AttrLocation.String(event.Location.String()),
		)
	case domain.TaskFinished, domain.TargetFinished, domain.BuildFinished:
		l.end(event)
	case domain.TargetSkipped:
		l.addEvent("target skipped", event,
			AttrTarget.String(event.Target),
			AttrReason.String(event.Reason),
		)
	case domain.Message:
		l.addEvent("message", event,
			AttrLevel.String(event.Level.String()),
			AttrMessage.String(event.Message),
		)
	default:
	}
	return nil
}

func (l *Listener) start(name string, event domain.Event, attrs ...attribute.KeyValue) {
	parent := context.Background()
	if n := len(l.stack); n > 0 {
		parent = l.stack[n-1].ctx
	}
	ctx, span := l.tracer.Start(parent, name,
		trace.WithTimestamp(event.Time),
		trace.WithAttributes(attrs...),
	)
	l.stack = append(l.stack, frame{ctx: ctx, span: span})
}

func (l *Listener) end(event domain.Event) {
	n := len(l.stack)
	if n == 0 {
		return
	}
	span := l.stack[n-1].span
	l.stack = l.stack[:n-1]

	if event.Err != nil {
		span.RecordError(event.Err)
		span.SetStatus(codes.Error, event.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(event.Time))
}

func (l *Listener) addEvent(name string, event domain.Event, attrs ...attribute.KeyValue) {
	n := len(l.stack)
	if n == 0 {
		return
	}
	l.stack[n-1].span.AddEvent(name,
		trace.WithTimestamp(event.Time),
		trace.WithAttributes(attrs...),
	)
}
