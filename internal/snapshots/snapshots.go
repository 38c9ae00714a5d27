// Package snapshots defines the persisted form of a scene snapshot and the
// repository contract the storage layer implements.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Slicer/Slicer-sub006/internal/scene"
)

// ErrInvalidName is returned when a snapshot name is empty or contains
// whitespace only.
var ErrInvalidName = errors.New("invalid snapshot name")

// Record is a named snapshot as stored.
type Record struct {
	ID        int64
	GUID      string
	Name      string
	NodeCount int
	// Snapshot is nil in List results. Records returned by FindByName may be
	// shared with a cache and must be treated as read-only.
	Snapshot  *scene.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter narrows List results.
type ListFilter struct {
	// Prefix keeps only names starting with it.
	Prefix string
	// Limit caps the number of records; 0 means no limit.
	Limit int
}

// Repository persists snapshots by name.
type Repository interface {
	// Save inserts or replaces the snapshot stored under name. The GUID and
	// CreatedAt of an existing record are kept.
	Save(ctx context.Context, name string, snap *scene.Snapshot) (*Record, error)
	// FindByName returns *SnapshotNotFoundError when nothing is stored under name.
	FindByName(ctx context.Context, name string) (*Record, error)
	// List returns records newest first, without their snapshot payload.
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	// Delete returns *SnapshotNotFoundError when nothing is stored under name.
	Delete(ctx context.Context, name string) error
}

// SnapshotNotFoundError is returned when no snapshot has the requested name.
type SnapshotNotFoundError struct {
	Name string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("snapshot not found: %s", e.Name)
}

// IsNotFound reports whether err is or wraps a *SnapshotNotFoundError.
func IsNotFound(err error) bool {
	var nf *SnapshotNotFoundError
	return errors.As(err, &nf)
}

// ValidateName checks that name can be used as a snapshot key.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
