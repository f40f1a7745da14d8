package models

import (
	"gorm.io/gorm"
)

// Counter is a named monotonic sequence. Each entity type that needs
// human-readable references gets its own row.
type Counter struct {
	Name string `gorm:"primaryKey" json:"name"`
	Seq  int64  `gorm:"not null;default:0" json:"seq"`
}

// TableName specifies the table name for the Counter model
func (Counter) TableName() string {
	return "counters"
}

// NextSequence atomically increments the named counter and returns the new
// value. The increment-and-read happens in a single statement so concurrent
// callers never observe the same value.
func NextSequence(db *gorm.DB, name string) (int64, error) {
	var seq int64
	err := db.Raw(
		`INSERT INTO counters (name, seq) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`,
		name,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
