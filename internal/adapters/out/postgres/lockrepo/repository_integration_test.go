package lockrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"ticketing/internal/adapters/out/postgres/lockrepo"
	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manualClock is an adjustable clock so lease expiry can be tested without
// sleeping.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(start time.Time) *manualClock {
	return &manualClock{now: start.UTC()}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// DistributedLockIntegrationTestSuite provides integration tests for the
// GORM-backed distributed lock using PostgreSQL containers.
type DistributedLockIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	clk       *manualClock
}

func (suite *DistributedLockIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&lockrepo.LockDTO{}))
}

func (suite *DistributedLockIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE locks").Error)
	suite.clk = newManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func (suite *DistributedLockIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *DistributedLockIntegrationTestSuite) newLock(owner string, minHold time.Duration) *lockrepo.GormDistributedLock {
	lock, err := lockrepo.NewGormDistributedLock(suite.db, suite.clk, owner, minHold)
	suite.Require().NoError(err)
	return lock
}

func (suite *DistributedLockIntegrationTestSuite) TestNewGormDistributedLock_Validation() {
	_, err := lockrepo.NewGormDistributedLock(suite.db, suite.clk, "", 0)
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)

	_, err = lockrepo.NewGormDistributedLock(suite.db, suite.clk, "instance-a", -time.Second)
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *DistributedLockIntegrationTestSuite) TestTryAcquire_FreshLock_Succeeds() {
	ctx := context.Background()
	lock := suite.newLock("instance-a", 0)

	lease, err := lock.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)
	suite.Equal("reaper", lease.Name)
	suite.Equal("instance-a", lease.Owner)
	suite.Equal(suite.clk.Now(), lease.AcquiredAt)
}

func (suite *DistributedLockIntegrationTestSuite) TestTryAcquire_HeldLock_ReturnsBusy() {
	ctx := context.Background()
	lockA := suite.newLock("instance-a", 0)
	lockB := suite.newLock("instance-b", 0)

	_, err := lockA.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)

	_, err = lockB.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().ErrorIs(err, ports.ErrLockBusy)
}

func (suite *DistributedLockIntegrationTestSuite) TestTryAcquire_ExpiredLock_IsTakenOver() {
	ctx := context.Background()
	lockA := suite.newLock("instance-a", 0)
	lockB := suite.newLock("instance-b", 0)

	_, err := lockA.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)

	// Holder crashes; its maxHold elapses.
	suite.clk.Advance(time.Minute)

	lease, err := lockB.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)
	suite.Equal("instance-b", lease.Owner)
}

func (suite *DistributedLockIntegrationTestSuite) TestRelease_FreesLockForOthers() {
	ctx := context.Background()
	lockA := suite.newLock("instance-a", 0)
	lockB := suite.newLock("instance-b", 0)

	lease, err := lockA.TryAcquire(ctx, "reaper", time.Hour)
	suite.Require().NoError(err)
	suite.Require().NoError(lockA.Release(ctx, lease))

	// Released well before the hour-long maxHold would have expired.
	suite.clk.Advance(time.Second)
	_, err = lockB.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)
}

func (suite *DistributedLockIntegrationTestSuite) TestRelease_EnforcesMinimumHold() {
	ctx := context.Background()
	lockA := suite.newLock("instance-a", 10*time.Minute)
	lockB := suite.newLock("instance-b", 0)

	lease, err := lockA.TryAcquire(ctx, "reaper", time.Hour)
	suite.Require().NoError(err)

	// Work finishes immediately, but the lease stays floored at minHold.
	suite.Require().NoError(lockA.Release(ctx, lease))

	suite.clk.Advance(5 * time.Minute)
	_, err = lockB.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().ErrorIs(err, ports.ErrLockBusy)

	suite.clk.Advance(5 * time.Minute)
	_, err = lockB.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)
}

func (suite *DistributedLockIntegrationTestSuite) TestRelease_LostLease_IsNoOp() {
	ctx := context.Background()
	lockA := suite.newLock("instance-a", 0)
	lockB := suite.newLock("instance-b", 0)

	staleLease, err := lockA.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)

	// instance-a's lease expires and instance-b takes the lock over.
	suite.clk.Advance(2 * time.Minute)
	_, err = lockB.TryAcquire(ctx, "reaper", time.Hour)
	suite.Require().NoError(err)

	// The stale release must not free instance-b's lock.
	suite.Require().NoError(lockA.Release(ctx, staleLease))

	_, err = lockA.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().ErrorIs(err, ports.ErrLockBusy)
}

func (suite *DistributedLockIntegrationTestSuite) TestTryAcquire_SameNameReacquiredByHolderAfterExpiry() {
	ctx := context.Background()
	lock := suite.newLock("instance-a", 0)

	_, err := lock.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)

	suite.clk.Advance(2 * time.Minute)

	lease, err := lock.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)
	suite.Equal("instance-a", lease.Owner)
}

func (suite *DistributedLockIntegrationTestSuite) TestTryAcquire_DifferentNames_AreIndependent() {
	ctx := context.Background()
	lockA := suite.newLock("instance-a", 0)
	lockB := suite.newLock("instance-b", 0)

	_, err := lockA.TryAcquire(ctx, "reaper", time.Minute)
	suite.Require().NoError(err)

	_, err = lockB.TryAcquire(ctx, "cleanup", time.Minute)
	suite.Require().NoError(err)
}

func (suite *DistributedLockIntegrationTestSuite) TestTryAcquire_Validation() {
	ctx := context.Background()
	lock := suite.newLock("instance-a", 0)

	_, err := lock.TryAcquire(ctx, "", time.Minute)
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)

	_, err = lock.TryAcquire(ctx, "reaper", 0)
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func TestDistributedLockIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DistributedLockIntegrationTestSuite))
}
