package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Slicer/Slicer-sub006/internal/cachemanager"
	"github.com/Slicer/Slicer-sub006/internal/log"
	"github.com/Slicer/Slicer-sub006/internal/scene"
	"github.com/Slicer/Slicer-sub006/internal/scenefile"
	"github.com/Slicer/Slicer-sub006/internal/snapshots"
	"github.com/Slicer/Slicer-sub006/internal/tracing"
)

const snapshotColumns = `id, guid, name, version, node_count, data, created_at, updated_at`

// storageFormat is the encoding of the data column.
const storageFormat = scenefile.FormatYAML

// RepositoryOption configures a SnapshotRepository.
type RepositoryOption func(*SnapshotRepository)

// WithCache serves FindByName through cache. Save and Delete invalidate the
// affected name.
func WithCache(cache cachemanager.CacheManager[string, *snapshots.Record], ttl time.Duration) RepositoryOption {
	return func(r *SnapshotRepository) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *SnapshotRepository) {
		r.now = now
	}
}

// SnapshotRepository implements snapshots.Repository using SQLite.
type SnapshotRepository struct {
	db       *sql.DB
	now      func() time.Time
	tracer   trace.Tracer
	cache    cachemanager.CacheManager[string, *snapshots.Record]
	cacheTTL time.Duration
	reader   *cachemanager.ReadThroughCache[string, *snapshots.Record, string]
}

var _ snapshots.Repository = (*SnapshotRepository)(nil)

func newSnapshotRepository(db *sql.DB, opts ...RepositoryOption) *SnapshotRepository {
	r := &SnapshotRepository{
		db:     db,
		now:    time.Now,
		tracer: otel.Tracer("scenectl/store"),
	}
	for _, opt := range opts {
		opt(r)
	}
	cache := r.cache
	if cache == nil {
		cache = cachemanager.NewInMemoryCacheManager[string, *snapshots.Record]("snapshots", 0, 0)
	}
	r.reader = cachemanager.NewReadThroughCache(cache, r.findByName, r.cache == nil)
	return r
}

func scanSnapshot(scanner interface{ Scan(...any) error }) (*SnapshotModel, error) {
	var m SnapshotModel
	err := scanner.Scan(&m.ID, &m.GUID, &m.Name, &m.Version, &m.NodeCount, &m.Data, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

// Save inserts or replaces the snapshot stored under name.
func (r *SnapshotRepository) Save(ctx context.Context, name string, snap *scene.Snapshot) (rec *snapshots.Record, err error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanStoreSave, trace.WithAttributes(attribute.String(tracing.AttrSnapshotName, name)))
	defer func() { tracing.End(span, err) }()

	if err := snapshots.ValidateName(name); err != nil {
		return nil, err
	}
	if err := snap.Validate(nil); err != nil {
		return nil, &scene.SerializationError{Op: "save", Format: string(storageFormat), Err: err}
	}
	data, err := scenefile.Marshal(snap, storageFormat)
	if err != nil {
		return nil, err
	}

	now := r.now().Unix()
	m := &SnapshotModel{
		GUID:      uuid.New().String(),
		Name:      name,
		Version:   snap.Version,
		NodeCount: len(snap.Nodes),
		Data:      data,
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO snapshots (guid, name, version, node_count, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			node_count = excluded.node_count,
			data = excluded.data,
			updated_at = excluded.updated_at
		 RETURNING id, guid, created_at, updated_at`,
		m.GUID, m.Name, m.Version, m.NodeCount, m.Data, now, now,
	)
	if err := row.Scan(&m.ID, &m.GUID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := r.reader.Invalidate(ctx, name); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrSceneNodes, m.NodeCount))
	log.Debug(log.CatStore, "Saved snapshot", "name", name, "guid", m.GUID, "nodes", m.NodeCount)

	rec = m.toRecord()
	rec.Snapshot = snap
	return rec, nil
}

// FindByName returns the record stored under name with its decoded snapshot.
func (r *SnapshotRepository) FindByName(ctx context.Context, name string) (rec *snapshots.Record, err error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanStoreFind, trace.WithAttributes(attribute.String(tracing.AttrSnapshotName, name)))
	defer func() { tracing.End(span, err) }()

	return r.reader.Get(ctx, name, name, r.cacheTTL)
}

func (r *SnapshotRepository) findByName(ctx context.Context, name string) (*snapshots.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE name = ?`, name)
	m, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &snapshots.SnapshotNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshot by name: %w", err)
	}

	snap, err := scenefile.Unmarshal(m.Data, storageFormat)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}
	rec := m.toRecord()
	rec.Snapshot = snap
	return rec, nil
}

// List returns records newest first without decoding their payload.
func (r *SnapshotRepository) List(ctx context.Context, filter snapshots.ListFilter) (recs []*snapshots.Record, err error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanStoreList)
	defer func() { tracing.End(span, err) }()

	query := `SELECT id, guid, name, version, node_count, created_at, updated_at FROM snapshots`
	var args []any
	if filter.Prefix != "" {
		query += ` WHERE instr(name, ?) = 1`
		args = append(args, filter.Prefix)
	}
	query += ` ORDER BY updated_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m SnapshotModel
		if err := rows.Scan(&m.ID, &m.GUID, &m.Name, &m.Version, &m.NodeCount, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		recs = append(recs, m.toRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrSnapshotRows, len(recs)))
	return recs, nil
}

// Delete removes the snapshot stored under name.
func (r *SnapshotRepository) Delete(ctx context.Context, name string) (err error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanStoreDelete, trace.WithAttributes(attribute.String(tracing.AttrSnapshotName, name)))
	defer func() { tracing.End(span, err) }()

	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if err := r.reader.Invalidate(ctx, name); err != nil {
		return err
	}
	if n == 0 {
		return &snapshots.SnapshotNotFoundError{Name: name}
	}
	log.Debug(log.CatStore, "Deleted snapshot", "name", name)
	return nil
}
