package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"busly/internal/shared/config"
)

type mockSweep struct {
	mock.Mock
}

func (m *mockSweep) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestSweep(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	cfg := config.SweeperConfig{
		Interval:       time.Minute,
		PendingTimeout: 30 * time.Minute,
	}
	expectedCutoff := now.Add(-cfg.PendingTimeout)

	t.Run("bookings expire first, then payments, at the same cutoff", func(t *testing.T) {
		bookingsSweep := new(mockSweep)
		paymentsSweep := new(mockSweep)
		s := New(bookingsSweep, paymentsSweep, cfg)
		s.now = func() time.Time { return now }

		bookingsSweep.On("ExpirePending", mock.Anything, expectedCutoff).Return(int64(3), nil)
		paymentsSweep.On("ExpirePending", mock.Anything, expectedCutoff).Return(int64(2), nil)

		s.Sweep(context.Background())

		bookingsSweep.AssertExpectations(t)
		paymentsSweep.AssertExpectations(t)
	})

	t.Run("payments are skipped when the booking sweep fails", func(t *testing.T) {
		bookingsSweep := new(mockSweep)
		paymentsSweep := new(mockSweep)
		s := New(bookingsSweep, paymentsSweep, cfg)
		s.now = func() time.Time { return now }

		bookingsSweep.On("ExpirePending", mock.Anything, expectedCutoff).Return(int64(0), errors.New("db down"))

		s.Sweep(context.Background())

		paymentsSweep.AssertNotCalled(t, "ExpirePending")
	})

	t.Run("ticker loop stops on Stop", func(t *testing.T) {
		bookingsSweep := new(mockSweep)
		paymentsSweep := new(mockSweep)
		bookingsSweep.On("ExpirePending", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
		paymentsSweep.On("ExpirePending", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

		s := New(bookingsSweep, paymentsSweep, config.SweeperConfig{
			Interval:       5 * time.Millisecond,
			PendingTimeout: time.Minute,
		})

		s.Start(context.Background())
		time.Sleep(20 * time.Millisecond)
		s.Stop()

		assert.NotPanics(t, func() {
			time.Sleep(10 * time.Millisecond)
		})
	})
}
