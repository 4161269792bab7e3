// Package sweeper runs the background job that expires stale pending
// bookings and their payments so claimed inventory returns to the pool.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"busly/internal/shared/config"
	"busly/pkg/logger"
)

// BookingSweep cancels pending bookings older than the cutoff and releases
// their seats. The bookings repository satisfies it.
type BookingSweep interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaymentSweep fails pending payments older than the cutoff. The payments
// service satisfies it.
type PaymentSweep interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type Sweeper struct {
	bookings BookingSweep
	payments PaymentSweep
	config   config.SweeperConfig
	done     chan struct{}
	now      func() time.Time
}

func New(bookings BookingSweep, payments PaymentSweep, cfg config.SweeperConfig) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		payments: payments,
		config:   cfg,
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the sweep loop. It returns immediately; the loop stops
// when Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)

	logger.GetDefault().InfoContext(ctx, "expiry sweeper started",
		slog.Duration("interval", s.config.Interval),
		slog.Duration("pending_timeout", s.config.PendingTimeout),
	)
}

func (s *Sweeper) Stop() {
	close(s.done)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one expiry pass. Bookings go first so released seats and
// cancelled bookings are visible before their payments are failed.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.config.PendingTimeout)

	expiredBookings, err := s.bookings.ExpirePending(ctx, cutoff)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to expire pending bookings", err, nil)
		return
	}

	expiredPayments, err := s.payments.ExpirePending(ctx, cutoff)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to expire pending payments", err, nil)
		return
	}

	if expiredBookings > 0 || expiredPayments > 0 {
		logger.GetDefault().LogSweep(ctx, expiredBookings, expiredPayments)
	}
}
