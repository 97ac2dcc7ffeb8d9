package bank

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tidebank/corebank/internal/domain"
	"github.com/tidebank/corebank/internal/logging"
)

// AccrualScheduler runs the periodic interest sweep. It behaves like
// any other caller of the engine: every account it touches goes through
// the same per-account lock and commit discipline as a foreground
// operation. The first sweep runs immediately on Start, then once per
// interval. Stop cancels between accounts, never mid-account; each
// account's credit is independently committed, so an interrupted sweep
// leaves no account in an inconsistent state.
type AccrualScheduler struct {
	engine   *Engine
	interval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewAccrualScheduler(engine *Engine, interval time.Duration) *AccrualScheduler {
	return &AccrualScheduler{
		engine:   engine,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Call at most once.
func (s *AccrualScheduler) Start() {
	go func() {
		defer close(s.done)

		s.Sweep(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.Sweep(context.Background())
			}
		}
	}()
}

// Stop halts the loop and waits for the current sweep to yield. Safe to
// call more than once.
func (s *AccrualScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Sweep applies interest to every account currently known to the
// cache. Accounts that don't qualify are skipped; individual failures
// are logged and do not abort the sweep.
func (s *AccrualScheduler) Sweep(ctx context.Context) {
	log := logging.FromContext(ctx)
	numbers := s.engine.AccountNumbers()

	credited := 0
	for _, number := range numbers {
		select {
		case <-s.stop:
			log.Info("accrual sweep interrupted", "accounts", len(numbers), "credited", credited)
			return
		default:
		}
		if ctx.Err() != nil {
			return
		}

		_, err := s.engine.ApplyInterest(ctx, number)
		switch {
		case err == nil:
			credited++
		case errors.Is(err, domain.ErrInterestNotApplicable):
			// not a saving account, or non-positive balance
		default:
			log.Error("interest accrual failed", "account", number, "error", err)
		}
	}

	log.Info("accrual sweep completed", "accounts", len(numbers), "credited", credited)
}
