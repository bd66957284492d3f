/*
scheduler.go - Background recalculation scheduler

PURPOSE:
  Keeps every saved loan's history current. Periodically looks for loans
  whose current version has no calculation (newly saved, or edited since
  the last one) and computes and records their APR.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A loan version the engine rejects is recorded and skipped until the
    loan is edited; storage errors are retried on the next tick
  - Uses the handler's cache, so a reverted edit costs no solver run

USAGE:
  scheduler := NewRecalcScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CalculateLoan endpoint (manual calculation)
  - store/sqlite/sqlite.go: ListUncalculatedLoans
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/warp/apr-engine/regz"
	"github.com/warp/apr-engine/store/sqlite"
)

// RecalcScheduler calculates loans that are missing a current result.
type RecalcScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRecalcScheduler creates a new scheduler.
func NewRecalcScheduler(store *sqlite.Store, handler *Handler) *RecalcScheduler {
	return &RecalcScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Minute,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (rs *RecalcScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (rs *RecalcScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RecalcScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(context.Background())

	for {
		select {
		case <-rs.ticker.C:
			rs.RunNow(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// RunNow performs one check and reports how many loans were calculated and
// how many failed.
func (rs *RecalcScheduler) RunNow(ctx context.Context) (processed, failed int) {
	loans, err := rs.Store.ListUncalculatedLoans(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing loans: %v", err)
		return 0, 0
	}

	for _, loan := range loans {
		calc, err := rs.Handler.calculateAndRecord(ctx, loan)
		if err != nil {
			log.Printf("[Scheduler] Error calculating %s (v%d): %v", loan.ID, loan.Version, err)
			failed++
			if permanent(err) {
				if err := rs.Store.SaveCalculationFailure(ctx, loan.ID, loan.Version, err.Error()); err != nil {
					log.Printf("[Scheduler] Error recording failure for %s: %v", loan.ID, err)
				}
			}
			continue
		}
		log.Printf("[Scheduler] Calculated %s (v%d): apr=%s", loan.ID, loan.Version, calc.Rounded.StringFixed(2))
		processed++
	}

	if processed > 0 || failed > 0 {
		log.Printf("[Scheduler] Completed: %d calculated, %d failed", processed, failed)
	}
	return processed, failed
}

// permanent reports whether recalculating the same loan version would fail
// the same way. Storage errors are retried on the next tick.
func permanent(err error) bool {
	return regz.IsClientError(err) || errors.Is(err, regz.ErrNoConvergence)
}
