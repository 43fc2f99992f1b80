package cmd

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"ticketing/internal/adapters/out/airline"
	"ticketing/internal/adapters/out/inmem"
	"ticketing/internal/adapters/out/postgres"
	"ticketing/internal/adapters/out/postgres/lockrepo"
	"ticketing/internal/core/application/usecases/commands"
	"ticketing/internal/core/application/usecases/queries"
	"ticketing/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	clk        clock.Clock
	pending    *inmem.PendingRetryStore
	issuance   *airline.Client
	retry      *airline.Client
	lock       *lockrepo.GormDistributedLock
	logger     *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	clk := clock.NewSystem()

	// First attempts and retries run against different success thresholds, so
	// each gets its own gateway instance. Handlers stay ignorant of the split.
	issuance, err := airline.NewClient(airline.Config{
		SuccessPercent: config.IssueSuccessPercent,
		MinDelay:       config.AirlineMinDelay,
		MaxDelay:       config.AirlineMaxDelay,
	}, clk, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("create issuance gateway: %w", err)
	}

	retry, err := airline.NewClient(airline.Config{
		SuccessPercent: config.RetrySuccessPercent,
		MinDelay:       config.AirlineMinDelay,
		MaxDelay:       config.AirlineMaxDelay,
	}, clk, rand.New(rand.NewSource(time.Now().UnixNano()+1)))
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("create retry gateway: %w", err)
	}

	lock, err := lockrepo.NewGormDistributedLock(gormDB, clk, lockOwner(), config.LockMinHold)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("create distributed lock: %w", err)
	}

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		clk:        clk,
		pending:    inmem.NewPendingRetryStore(),
		issuance:   issuance,
		retry:      retry,
		lock:       lock,
		logger:     logger,
	}, nil
}

// lockOwner identifies this process instance in the shared lock table.
func lockOwner() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%s", hostname, uuid.NewString())
}

func (c *CompositionRoot) CreateIssueTicketCommandHandler() commands.IssueTicketCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewIssueTicketCommandHandler(f, c.issuance, c.pending, c.clk)
}

func (c *CompositionRoot) CreateRetryTicketCommandHandler() commands.RetryTicketCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRetryTicketCommandHandler(f, c.retry, c.pending, c.clk)
}

func (c *CompositionRoot) CreateCancelExpiredOrdersCommandHandler() commands.CancelExpiredOrdersCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelExpiredOrdersCommandHandler(
		f,
		c.lock,
		c.clk,
		c.config.PaymentGracePeriod,
		c.config.LockMaxHold,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetPendingRetriesQueryHandler() queries.GetPendingRetriesQueryHandler {
	return queries.NewGetPendingRetriesQueryHandler(c.pending)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
