// Package scenefile reads and writes scene snapshots as YAML or JSON files.
package scenefile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Slicer/Slicer-sub006/internal/log"
	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/tracing"
)

// Format names a file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const tracerName = "scenectl/scenefile"

// ParseFormat validates a format name from config or flags.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatYAML, "yml", "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown scene format %q (must be \"yaml\" or \"json\")", s)
	}
}

// FormatFromPath picks the format from the file extension. Unknown
// extensions fall back to def.
func FormatFromPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return def
	}
}

// Encode writes snap to w.
func Encode(w io.Writer, snap *scene.Snapshot, format Format) error {
	if snap == nil {
		return &scene.SerializationError{Op: "encode", Format: string(format), Err: fmt.Errorf("nil snapshot")}
	}
	var err error
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(snap); err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		// encoding/json would replace invalid UTF-8 with U+FFFD.
		if err = checkUTF8(snap); err == nil {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			err = enc.Encode(snap)
		}
	default:
		err = fmt.Errorf("unsupported format")
	}
	if err != nil {
		return &scene.SerializationError{Op: "encode", Format: string(format), Err: err}
	}
	return nil
}

// Decode reads one snapshot from r. Unknown fields are rejected so that a
// file written by a newer layout fails loudly instead of losing data.
func Decode(r io.Reader, format Format) (*scene.Snapshot, error) {
	var snap scene.Snapshot
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&snap)
		if err == io.EOF {
			err = fmt.Errorf("empty document")
		}
	case FormatJSON:
		var data []byte
		if data, err = io.ReadAll(r); err != nil {
			break
		}
		if !utf8.Valid(data) {
			err = fmt.Errorf("input is not valid UTF-8")
			break
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&snap)
	default:
		err = fmt.Errorf("unsupported format")
	}
	if err != nil {
		return nil, &scene.SerializationError{Op: "decode", Format: string(format), Err: err}
	}
	if err := snap.Validate(nil); err != nil {
		return nil, &scene.SerializationError{Op: "decode", Format: string(format), Err: err}
	}
	return &snap, nil
}

// checkUTF8 reports the first name, attribute or reference role that is not
// valid UTF-8.
func checkUTF8(snap *scene.Snapshot) error {
	for i, rec := range snap.Nodes {
		if !utf8.ValidString(rec.Type) || !utf8.ValidString(rec.Name) {
			return fmt.Errorf("node %d: type or name is not valid UTF-8", i)
		}
		for k, v := range rec.Attributes {
			if !utf8.ValidString(k) || !utf8.ValidString(v) {
				return fmt.Errorf("node %d: attribute %q is not valid UTF-8", i, k)
			}
		}
		for role := range rec.References {
			if !utf8.ValidString(role) {
				return fmt.Errorf("node %d: reference role %q is not valid UTF-8", i, role)
			}
		}
	}
	return nil
}

// Marshal encodes snap into memory.
func Marshal(snap *scene.Snapshot, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, snap, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot held in memory.
func Unmarshal(data []byte, format Format) (*scene.Snapshot, error) {
	return Decode(bytes.NewReader(data), format)
}

// ReadFile loads the snapshot at path, choosing the format by extension.
func ReadFile(ctx context.Context, path string) (snap *scene.Snapshot, err error) {
	format := FormatFromPath(path, FormatYAML)
	_, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanFileRead, trace.WithAttributes(
		attribute.String(tracing.AttrFilePath, path),
		attribute.String(tracing.AttrFileFormat, string(format)),
	))
	defer func() { tracing.End(span, err) }()

	f, err := os.Open(path) //nolint:gosec // G304: path is user-supplied by design
	if err != nil {
		return nil, &scene.SerializationError{Op: "read", Format: string(format), Err: err}
	}
	defer func() { _ = f.Close() }()

	snap, err = Decode(f, format)
	if err != nil {
		log.ErrorErr(log.CatScene, "Failed to decode scene file", err, "path", path)
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrSceneNodes, len(snap.Nodes)))
	log.Debug(log.CatScene, "Read scene file", "path", path, "nodes", len(snap.Nodes))
	return snap, nil
}

// WriteFile stores snap at path atomically (temp file, then rename),
// choosing the format by extension.
func WriteFile(ctx context.Context, path string, snap *scene.Snapshot) error {
	return WriteFileAs(ctx, path, snap, FormatFromPath(path, FormatYAML))
}

// WriteFileAs is WriteFile with an explicit format.
func WriteFileAs(ctx context.Context, path string, snap *scene.Snapshot, format Format) (err error) {
	_, span := otel.Tracer(tracerName).Start(ctx, tracing.SpanFileWrite, trace.WithAttributes(
		attribute.String(tracing.AttrFilePath, path),
		attribute.String(tracing.AttrFileFormat, string(format)),
	))
	defer func() { tracing.End(span, err) }()

	data, err := Marshal(snap, format)
	if err != nil {
		return err
	}

	writeErr := func(msg string, err error) error {
		return &scene.SerializationError{Op: "write", Format: string(format), Err: fmt.Errorf("%s: %w", msg, err)}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return writeErr("creating directory", err)
	}
	temp, err := os.CreateTemp(dir, ".scene.tmp.*")
	if err != nil {
		return writeErr("creating temp file", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return writeErr("writing temp file", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return writeErr("closing temp file", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return writeErr("renaming temp file", err)
	}

	span.SetAttributes(attribute.Int(tracing.AttrSceneNodes, len(snap.Nodes)))
	log.Debug(log.CatScene, "Wrote scene file", "path", path, "nodes", len(snap.Nodes), "bytes", len(data))
	return nil
}
