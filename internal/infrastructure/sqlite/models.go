package sqlite

import (
	"time"

	"github.com/Slicer/Slicer-sub006/internal/snapshots"
)

// SnapshotModel is a row of the snapshots table. Times are Unix seconds.
type SnapshotModel struct {
	ID        int64
	GUID      string
	Name      string
	Version   int
	NodeCount int
	Data      []byte
	CreatedAt int64
	UpdatedAt int64
}

// toRecord converts the row to a record without decoding Data.
func (m *SnapshotModel) toRecord() *snapshots.Record {
	return &snapshots.Record{
		ID:        m.ID,
		GUID:      m.GUID,
		Name:      m.Name,
		NodeCount: m.NodeCount,
		CreatedAt: time.Unix(m.CreatedAt, 0),
		UpdatedAt: time.Unix(m.UpdatedAt, 0),
	}
}
