package lockrepo

import (
	"context"
	"time"

	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
	"ticketing/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDistributedLock implements DistributedLock on the shared lock table.
//
// Acquisition is a compare-and-set UPDATE that only succeeds against an
// expired row, with an insert-if-absent fallback for locks never taken
// before. Both paths are single atomic statements, so concurrent instances
// racing for the same name resolve to exactly one winner.
type GormDistributedLock struct {
	db      *gorm.DB
	clk     clock.Clock
	owner   string
	minHold time.Duration
}

// NewGormDistributedLock creates a lock adapter identifying itself as owner in
// the lock table. minHold is the floor Release enforces: a lease is never
// given up earlier than minHold after acquisition, which keeps instances with
// skewed schedules from trading the lock back and forth within one tick.
func NewGormDistributedLock(
	db *gorm.DB, clk clock.Clock, owner string, minHold time.Duration,
) (*GormDistributedLock, error) {
	if owner == "" {
		return nil, errs.NewValueIsRequiredError("owner")
	}
	if minHold < 0 {
		return nil, errs.NewValueIsInvalidError("minHold")
	}

	return &GormDistributedLock{
		db:      db,
		clk:     clk,
		owner:   owner,
		minHold: minHold,
	}, nil
}

// TryAcquire takes the named lock for at most maxHold, or returns
// ports.ErrLockBusy when another instance holds it. An expired row counts as
// free, so a crashed holder cannot wedge the lock past its maxHold.
func (l *GormDistributedLock) TryAcquire(
	ctx context.Context, name string, maxHold time.Duration,
) (ports.Lease, error) {
	if name == "" {
		return ports.Lease{}, errs.NewValueIsRequiredError("name")
	}
	if maxHold <= 0 {
		return ports.Lease{}, errs.NewValueIsInvalidError("maxHold")
	}

	now := l.clk.Now()

	// Take over an existing row if its lease has expired.
	result := l.db.WithContext(ctx).Model(&LockDTO{}).
		Where("name = ? AND locked_until <= ?", name, now).
		Updates(map[string]any{
			"locked_by":    l.owner,
			"locked_at":    now,
			"locked_until": now.Add(maxHold),
		})
	if result.Error != nil {
		return ports.Lease{}, result.Error
	}
	if result.RowsAffected > 0 {
		return ports.Lease{Name: name, Owner: l.owner, AcquiredAt: now}, nil
	}

	// No expired row to take over: either the lock was never created, or it
	// is currently held. Insert-if-absent decides which atomically.
	dto := LockDTO{
		Name:        name,
		LockedBy:    l.owner,
		LockedAt:    now,
		LockedUntil: now.Add(maxHold),
	}
	result = l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto)
	if result.Error != nil {
		return ports.Lease{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ports.Lease{}, ports.ErrLockBusy
	}

	return ports.Lease{Name: name, Owner: l.owner, AcquiredAt: now}, nil
}

// Release gives up the lease by moving locked_until back to now, floored at
// minHold past acquisition. Only the row still owned by this instance is
// touched; a lease that expired and was taken over elsewhere is left alone.
func (l *GormDistributedLock) Release(ctx context.Context, lease ports.Lease) error {
	if lease.Name == "" {
		return errs.NewValueIsRequiredError("lease.Name")
	}

	releaseAt := l.clk.Now()
	if floor := lease.AcquiredAt.Add(l.minHold); releaseAt.Before(floor) {
		releaseAt = floor
	}

	return l.db.WithContext(ctx).Model(&LockDTO{}).
		Where("name = ? AND locked_by = ?", lease.Name, lease.Owner).
		Update("locked_until", releaseAt).Error
}
