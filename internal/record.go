package internal

import (
	"time"

	"github.com/turbolytics/curator/internal/catalog"
)

// Record is the snapshot envelope for one published entity. It pins
// the entity to the run that produced it so snapshots from different
// runs can be compared.
type Record struct {
	SyncID     string         `json:"sync_id"`
	Blueprint  string         `json:"blueprint"`
	Entity     catalog.Entity `json:"entity"`
	RecordedAt time.Time      `json:"recorded_at"`
}

func NewRecord(syncID, blueprint string, entity catalog.Entity) *Record {
	return &Record{
		SyncID:     syncID,
		Blueprint:  blueprint,
		Entity:     entity,
		RecordedAt: time.Now().UTC(),
	}
}
