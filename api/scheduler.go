/*
scheduler.go - Automated deadline reminder scheduler

PURPOSE:
  Periodically scans every client's tax periods for obligations that
  are overdue or inside the reminder horizon and logs a reminder for
  each. The office picks these up from the log stream (or a log
  shipper) rather than from a mail queue.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Reuses the monitoring read-model for classification, so the
    scheduler and the dashboard can never disagree
  - Skips obligations already completed or excepted

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - HorizonDays:   Reminder window ahead of a deadline (default: 3)
  - Enabled:       Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewDeadlineScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - monitoring/monitoring.go: UpcomingDeadlines classification
  - handlers.go: UpcomingDeadlines endpoint (same data, on demand)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taxdesk/kpi-engine/monitoring"
	"github.com/taxdesk/kpi-engine/store/sqlite"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// DeadlineScheduler handles automated deadline reminders.
type DeadlineScheduler struct {
	Store         *sqlite.Store
	Log           zerolog.Logger
	CheckInterval time.Duration
	HorizonDays   int
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDeadlineScheduler creates a new scheduler.
func NewDeadlineScheduler(store *sqlite.Store, log zerolog.Logger) *DeadlineScheduler {
	return &DeadlineScheduler{
		Store:         store,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		HorizonDays:   3,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DeadlineScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		ds.Log.Info().Msg("deadline scheduler disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.wg.Add(1)

	go ds.run()

	ds.Log.Info().
		Dur("check_interval", ds.CheckInterval).
		Int("horizon_days", ds.HorizonDays).
		Msg("deadline scheduler started")
}

// Stop stops the scheduler.
func (ds *DeadlineScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.Log.Info().Msg("deadline scheduler stopped")
	}
}

func (ds *DeadlineScheduler) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.checkAndNotify()

	for {
		select {
		case <-ds.ticker.C:
			ds.checkAndNotify()
		case <-ds.stop:
			return
		}
	}
}

func (ds *DeadlineScheduler) checkAndNotify() {
	ctx := context.Background()
	today := taxcal.Today()

	clients, err := ds.Store.ListClients(ctx)
	if err != nil {
		ds.Log.Error().Err(err).Msg("scheduler: failed to list clients")
		return
	}

	book := make([]monitoring.ClientPeriods, 0, len(clients))
	for _, c := range clients {
		records, err := ds.Store.ListPeriodsByClient(ctx, c.ID, 0)
		if err != nil {
			ds.Log.Error().Err(err).Str("client_id", c.ID).Msg("scheduler: failed to list periods")
			continue
		}
		cp := monitoring.ClientPeriods{ClientID: c.ID, ClientName: c.Name}
		for _, rec := range records {
			cp.Periods = append(cp.Periods, rec.Period)
		}
		book = append(book, cp)
	}

	overdue := 0
	dueSoon := 0
	for _, d := range monitoring.UpcomingDeadlines(book, today, ds.HorizonDays) {
		event := ds.Log.Info()
		if d.State == taxcal.StateOverdue {
			event = ds.Log.Warn()
			overdue++
		} else {
			dueSoon++
		}
		event.
			Str("client", d.ClientName).
			Str("period", d.Period).
			Str("obligation", d.KindLabel).
			Str("deadline", d.Deadline.String()).
			Int("days_left", d.DaysLeft).
			Msg("deadline reminder")
	}

	if overdue > 0 || dueSoon > 0 {
		ds.Log.Info().
			Int("overdue", overdue).
			Int("due_soon", dueSoon).
			Msg("deadline scan completed")
	}
}

// RunNow triggers an immediate scan (for testing/admin).
func (ds *DeadlineScheduler) RunNow() {
	ds.checkAndNotify()
}
