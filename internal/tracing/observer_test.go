package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Slicer/Slicer-sub006/internal/scene"
)

func TestSpanObserver_RecordsSceneEvents(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "import")

	reg := scene.New()
	token := reg.RegisterObserver(NewSpanObserver(span))

	_, err := reg.Import(&scene.Snapshot{Version: scene.SnapshotVersion, Nodes: []scene.NodeRecord{
		{ID: 1, Type: "Volume"},
	}})
	require.NoError(t, err)
	require.NoError(t, reg.UnregisterObserver(token))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	events := ended[0].Events()
	require.Len(t, events, 3)
	require.Equal(t, scene.StartImport.String(), events[0].Name)
	require.Empty(t, events[0].Attributes)
	require.Equal(t, scene.NodeAdded.String(), events[1].Name)
	require.Equal(t, scene.EndImport.String(), events[2].Name)

	attrs := map[string]any{}
	for _, kv := range events[1].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	require.Equal(t, "Volume", attrs[AttrNodeType])
	require.EqualValues(t, 1, attrs[AttrNodeID])
}

func TestSpanObserver_NonRecordingSpan(t *testing.T) {
	_, span := noop.NewTracerProvider().Tracer("noop").Start(context.Background(), "x")
	obs := NewSpanObserver(span)
	require.NotPanics(t, func() {
		obs.OnSceneChanged(scene.Event{Kind: scene.Modified})
	})
}
