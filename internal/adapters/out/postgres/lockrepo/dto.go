// Package lockrepo implements the distributed lock port on top of a shared
// PostgreSQL lock table. The scheme follows the lease pattern: a row per lock
// name carrying who holds it and until when, advanced with atomic
// compare-and-set updates so a fleet of instances never runs the same
// scheduled job concurrently.
package lockrepo

import "time"

// LockDTO represents one named lock row in the shared lock table.
type LockDTO struct {
	Name        string `gorm:"primaryKey;size:128"`
	LockedBy    string `gorm:"size:128"`
	LockedAt    time.Time
	LockedUntil time.Time `gorm:"index"`
}

// TableName specifies the database table name for lock rows.
func (LockDTO) TableName() string {
	return "locks"
}
