package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrFilePath     = "file.path"
	AttrFileFormat   = "file.format"
	AttrSceneNodes   = "scene.nodes"
	AttrSnapshotName = "snapshot.name"
	AttrSnapshotRows = "snapshot.count"
	AttrNodeID       = "node.id"
	AttrNodeType     = "node.type"
	AttrCommand      = "cli.command"
)

// Span names.
const (
	SpanFileRead    = "scenefile.read"
	SpanFileWrite   = "scenefile.write"
	SpanStoreSave   = "store.save"
	SpanStoreFind   = "store.find"
	SpanStoreList   = "store.list"
	SpanStoreDelete = "store.delete"
	SpanPrefixCLI   = "cli."
)

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
