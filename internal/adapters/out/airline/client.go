// Package airline provides the adapter for the external airline ticketing
// service. The real integration is out of scope, so the client simulates the
// remote behavior behind the same boundary: randomized processing latency and
// probabilistic business failures, both configurable and deterministic under a
// seeded random source.
package airline

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
	"ticketing/internal/pkg/errs"
)

// Config controls the simulated behavior of the airline service.
type Config struct {
	// SuccessPercent is the issuance success probability in percent (0-100).
	SuccessPercent int

	// MinDelay and MaxDelay bound the simulated processing latency.
	// Each call draws a delay uniformly from [MinDelay, MaxDelay].
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Client simulates the unreliable remote ticketing service. It is the only
// component allowed to fail for business reasons; such failures surface as
// ports.AirlineAPIError and drive the retry path.
//
// Client is safe for concurrent use. The injected rand source is guarded by a
// mutex since rand.Rand itself is not goroutine-safe.
type Client struct {
	cfg Config
	clk clock.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

// NewClient creates a simulated airline client. The rand source is injected so
// tests can seed it (or pin SuccessPercent to 0/100) for deterministic
// outcomes without timing races.
func NewClient(cfg Config, clk clock.Clock, rng *rand.Rand) (*Client, error) {
	if cfg.SuccessPercent < 0 || cfg.SuccessPercent > 100 {
		return nil, errs.NewValueIsOutOfRangeError("success percent", cfg.SuccessPercent, 0, 100)
	}
	if cfg.MinDelay < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("min delay",
			fmt.Errorf("%s is negative", cfg.MinDelay))
	}
	if cfg.MaxDelay < cfg.MinDelay {
		return nil, errs.NewValueIsInvalidErrorWithCause("max delay",
			fmt.Errorf("%s is less than min delay %s", cfg.MaxDelay, cfg.MinDelay))
	}

	return &Client{
		cfg: cfg,
		clk: clk,
		rng: rng,
	}, nil
}

// IssueTicket simulates one issuance call: wait out the drawn processing
// delay (honoring ctx cancellation), then succeed with the configured
// probability. Ticket numbers embed the order id and the issuance instant, so
// they are unique per call.
func (c *Client) IssueTicket(ctx context.Context, orderID kernel.UUID) (string, error) {
	if err := orderID.Validate(); err != nil {
		return "", err
	}

	delay, success := c.draw()
	if err := sleepOrDone(ctx, delay); err != nil {
		return "", err
	}

	if !success {
		return "", &ports.AirlineAPIError{
			OrderID: orderID,
			Message: "insufficient seats on requested flight",
		}
	}

	return fmt.Sprintf("TKT-%s-%d", orderID, c.clk.Now().UnixNano()), nil
}

// draw picks the delay and the outcome for one call under the rand mutex.
func (c *Client) draw() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delay := c.cfg.MinDelay
	if window := c.cfg.MaxDelay - c.cfg.MinDelay; window > 0 {
		delay += time.Duration(c.rng.Int63n(int64(window) + 1))
	}

	return delay, c.rng.Intn(100) < c.cfg.SuccessPercent
}

// sleepOrDone waits for the duration or returns early with ctx.Err() on
// cancellation, so a pending call never blocks shutdown.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
