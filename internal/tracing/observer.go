package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Slicer/Slicer-sub006/internal/scene"
)

// SpanObserver adds a span event for every scene event it sees. Register it
// on a registry for the lifetime of a traced operation.
type SpanObserver struct {
	span trace.Span
}

// NewSpanObserver returns an observer that annotates span.
func NewSpanObserver(span trace.Span) *SpanObserver {
	return &SpanObserver{span: span}
}

// OnSceneChanged implements scene.Observer.
func (o *SpanObserver) OnSceneChanged(ev scene.Event) {
	if !o.span.IsRecording() {
		return
	}
	var attrs []attribute.KeyValue
	if ev.NodeID != scene.NilID {
		attrs = append(attrs,
			attribute.Int64(AttrNodeID, int64(ev.NodeID)),
			attribute.String(AttrNodeType, ev.NodeType),
		)
	}
	o.span.AddEvent(ev.Kind.String(), trace.WithAttributes(attrs...))
}
