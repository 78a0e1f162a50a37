package services

import (
	"context"
	"log"
	"time"
)

// MaintenanceRunner performs the periodic housekeeping: expiring pending
// bookings whose departure has passed and pruning old login attempts.
type MaintenanceRunner struct {
	bookings *BookingService
	attempts *LoginAttemptService
	interval time.Duration
}

func NewMaintenanceRunner(bookings *BookingService, attempts *LoginAttemptService, interval time.Duration) *MaintenanceRunner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MaintenanceRunner{bookings: bookings, attempts: attempts, interval: interval}
}

// RunOnce executes every maintenance task once. A failing task does not stop
// the others; the first error is returned.
func (r *MaintenanceRunner) RunOnce(ctx context.Context) error {
	var firstErr error
	cancelled, err := r.bookings.CancelPastPending(ctx)
	if err != nil {
		log.Printf("maintenance: cancel past pending bookings: %v", err)
		firstErr = err
	} else if cancelled > 0 {
		log.Printf("maintenance: cancelled %d pending bookings past departure", cancelled)
	}

	removed, err := r.attempts.Cleanup(ctx)
	if err != nil {
		log.Printf("maintenance: cleanup login attempts: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	} else if removed > 0 {
		log.Printf("maintenance: removed %d old login attempts", removed)
	}
	return firstErr
}

// Start runs the tasks immediately and then on every tick until ctx is done.
func (r *MaintenanceRunner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("Maintenance started - running every %s", r.interval)
	_ = r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.RunOnce(ctx)
		}
	}
}
