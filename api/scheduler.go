/*
scheduler.go - Automated monthly accrual scheduler

PURPOSE:
  Periodically sweeps active employees and credits the monthly accrual
  for every leave type with a non-zero accrual rate. Each credit is
  recorded with a per-month mark, so restarts and overlapping runs never
  double-credit.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Credits at most one accrual per (employee, leave type, month)
  - The mark and the credit commit in the same transaction

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAccrualScheduler(store)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerAccrual endpoint (manual accrual)
  - leave/service.go: AccruePeriod
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Toumasadio2/PME-SI/leave"
)

// AccrualScheduler credits monthly accruals in the background.
type AccrualScheduler struct {
	Store         leave.Store
	Service       *leave.Service
	CheckInterval time.Duration
	Enabled       bool

	// Orgs lists the tenants to sweep. Defaults to the single default org.
	Orgs []leave.OrgID

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAccrualScheduler creates a new scheduler.
func NewAccrualScheduler(store leave.Store) *AccrualScheduler {
	return &AccrualScheduler{
		Store:         store,
		Service:       leave.NewService(store),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Orgs:          []leave.OrgID{defaultOrg},
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (as *AccrualScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[Scheduler] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler.
func (as *AccrualScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (as *AccrualScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.sweep(time.Now())

	for {
		select {
		case <-as.ticker.C:
			as.sweep(time.Now())
		case <-as.stop:
			return
		}
	}
}

// sweep credits the current month's accrual for every active employee
// and accruing leave type that has not been credited yet.
func (as *AccrualScheduler) sweep(now time.Time) {
	ctx := context.Background()
	year, month := now.Year(), now.Month()

	credited := 0
	skipped := 0

	for _, org := range as.Orgs {
		employees, err := as.Store.ListEmployees(ctx, org)
		if err != nil {
			log.Printf("[Scheduler] Error listing employees for %s: %v", org, err)
			continue
		}

		types, err := as.Store.ListLeaveTypes(ctx, org)
		if err != nil {
			log.Printf("[Scheduler] Error listing leave types for %s: %v", org, err)
			continue
		}

		for _, emp := range employees {
			if !emp.Active {
				continue
			}
			for _, lt := range types {
				if lt.AccrualRate.IsZero() {
					continue
				}

				fresh, err := as.Service.AccruePeriod(ctx, org, emp.ID, lt.ID, year, month)
				if err != nil {
					log.Printf("[Scheduler] Error accruing %s/%s: %v", emp.ID, lt.ID, err)
					continue
				}
				if fresh {
					credited++
				} else {
					skipped++
				}
			}
		}
	}

	if credited > 0 {
		log.Printf("[Scheduler] Completed %d-%02d: %d credited, %d skipped (already done)",
			year, month, credited, skipped)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (as *AccrualScheduler) RunNow(now time.Time) {
	as.sweep(now)
}
