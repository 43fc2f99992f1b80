package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockBusy is returned by TryAcquire when the named lock is currently held
// by another process instance. This is routine steady-state behavior under
// multi-instance deployment, not an error condition to surface to users.
var ErrLockBusy = errors.New("lock is held by another instance")

// Lease is a time-bounded grant of exclusive execution rights for a named lock.
// Leases are issued by TryAcquire and must be passed back to Release.
type Lease struct {
	// Name is the lock the lease was granted for.
	Name string

	// Owner identifies the process instance holding the lease.
	Owner string

	// AcquiredAt is when the lease was granted. Release uses it to enforce
	// the minimum-hold floor.
	AcquiredAt time.Time
}

// DistributedLock serializes scheduled work across a fleet of service
// instances through a shared lock table.
type DistributedLock interface {
	// TryAcquire attempts to take the named lock for at most maxHold.
	// Returns ErrLockBusy when the lock is held elsewhere. A crashed holder's
	// lock becomes acquirable again once its maxHold elapses.
	TryAcquire(ctx context.Context, name string, maxHold time.Duration) (Lease, error)

	// Release gives up the lease, but never earlier than the configured
	// minimum hold after acquisition (to throttle contention across instances
	// running the same schedule). Releasing a lease that was lost or expired
	// is a no-op.
	Release(ctx context.Context, lease Lease) error
}
