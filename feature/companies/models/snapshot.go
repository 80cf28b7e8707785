package models

import (
	"time"

	"company-manager/core/reconcile"
)

// Snapshot records the outcome of one persisted reconciliation run.
type Snapshot struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Status     string    `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Loaded     int       `gorm:"column:loaded" json:"loaded"`
	Expected   int       `gorm:"column:expected" json:"expected"`
	Requests   int       `gorm:"column:requests" json:"requests"`
	Failures   int       `gorm:"column:failures" json:"failures"`
	DurationMs int64     `gorm:"column:duration_ms" json:"duration_ms"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at"`
}

// TableName overrides the table name.
func (Snapshot) TableName() string {
	return "company_snapshots"
}

// SnapshotColumns are the columns the repository reads and writes.
var SnapshotColumns = []string{
	"id", "status", "loaded", "expected", "requests", "failures", "duration_ms", "created_at",
}

// NewSnapshot summarizes a reconciliation result.
func NewSnapshot(result *reconcile.Result) Snapshot {
	return Snapshot{
		Status:     string(result.Status()),
		Loaded:     result.Loaded,
		Expected:   result.Expected,
		Requests:   result.Requests,
		Failures:   result.Failures,
		DurationMs: result.Duration.Milliseconds(),
	}
}
