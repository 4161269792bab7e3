package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busly/internal/bookings"
	"busly/internal/schedules"
	"busly/internal/users"
)

type capturingProducer struct {
	published []*Notification
	err       error
}

func (p *capturingProducer) PublishNotification(ctx context.Context, n *Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func (p *capturingProducer) Close() error       { return nil }
func (p *capturingProducer) HealthCheck() error { return nil }

type stubUserDirectory struct {
	user *users.User
	err  error
}

func (d *stubUserDirectory) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	return d.user, d.err
}

type stubScheduleDirectory struct {
	schedule *schedules.ScheduleResponse
	err      error
}

func (d *stubScheduleDirectory) GetSchedule(ctx context.Context, id uuid.UUID) (*schedules.ScheduleResponse, error) {
	return d.schedule, d.err
}

func testBooking() *bookings.Booking {
	return &bookings.Booking{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ScheduleID: uuid.New(),
		BookingRef: "BUS-20240315-ABCDEF",
		TotalPrice: 630000,
		Seats: []bookings.BookingSeat{
			{Label: "1A"},
			{Label: "1B"},
		},
	}
}

func TestNotifyBookingConfirmed(t *testing.T) {
	ctx := context.Background()
	booking := testBooking()
	user := &users.User{ID: booking.UserID, Email: "linh@example.com", FirstName: "Linh"}
	schedule := &schedules.ScheduleResponse{
		RouteName:   "HCMC Express",
		Origin:      "Ho Chi Minh City",
		Destination: "Da Lat",
		DepartureAt: time.Date(2024, 3, 16, 6, 0, 0, 0, time.UTC),
	}

	t.Run("message carries ticket details keyed by recipient", func(t *testing.T) {
		producer := &capturingProducer{}
		notifier := NewBookingNotifier(producer, &stubUserDirectory{user: user}, &stubScheduleDirectory{schedule: schedule})

		require.NoError(t, notifier.NotifyBookingConfirmed(ctx, booking))
		require.Len(t, producer.published, 1)

		n := producer.published[0]
		assert.Equal(t, NotificationTypeBookingConfirmed, n.Type)
		assert.Equal(t, "linh@example.com", n.RecipientEmail)
		assert.Equal(t, booking.BookingRef, n.BookingRef)
		assert.Equal(t, booking.UserID.String(), n.GetPartitionKey())
		assert.Contains(t, n.Subject, booking.BookingRef)
		assert.Equal(t, "1A, 1B", n.Data["seat_labels"])
		assert.Contains(t, n.Data["route_name"], "HCMC Express")
	})

	t.Run("schedule lookup failure still delivers the core message", func(t *testing.T) {
		producer := &capturingProducer{}
		notifier := NewBookingNotifier(producer, &stubUserDirectory{user: user}, &stubScheduleDirectory{err: errors.New("gone")})

		require.NoError(t, notifier.NotifyBookingConfirmed(ctx, booking))
		require.Len(t, producer.published, 1)
		assert.NotContains(t, producer.published[0].Data, "route_name")
	})

	t.Run("unknown recipient fails before publishing", func(t *testing.T) {
		producer := &capturingProducer{}
		notifier := NewBookingNotifier(producer, &stubUserDirectory{err: errors.New("no such user")}, &stubScheduleDirectory{schedule: schedule})

		err := notifier.NotifyBookingConfirmed(ctx, booking)
		require.Error(t, err)
		assert.Empty(t, producer.published)
	})
}

func TestNotifyPaymentFailed(t *testing.T) {
	booking := testBooking()
	user := &users.User{ID: booking.UserID, Email: "linh@example.com", FirstName: "Linh"}

	producer := &capturingProducer{}
	notifier := NewBookingNotifier(producer, &stubUserDirectory{user: user}, &stubScheduleDirectory{})

	require.NoError(t, notifier.NotifyPaymentFailed(context.Background(), booking, "card declined"))
	require.Len(t, producer.published, 1)

	n := producer.published[0]
	assert.Equal(t, NotificationTypePaymentFailed, n.Type)
	assert.Equal(t, "card declined", n.Data["reason"])
	assert.Contains(t, n.Subject, booking.BookingRef)
}

func TestGenerateContent(t *testing.T) {
	svc := &SMTPEmailService{}

	t.Run("confirmation email embeds the QR ticket inline", func(t *testing.T) {
		n := NewNotification(NotificationTypeBookingConfirmed, uuid.New(), "linh@example.com", "Linh")
		n.BookingRef = "BUS-20240315-ABCDEF"
		n.Data["route_name"] = "HCMC Express"
		n.Data["seat_labels"] = "1A, 1B"
		n.Data["total_price"] = int64(630000)

		html, text, err := svc.generateContent(n)
		require.NoError(t, err)
		assert.Contains(t, html, "data:image/png;base64,")
		assert.Contains(t, html, "BUS-20240315-ABCDEF")
		assert.Contains(t, text, "BUS-20240315-ABCDEF")
		assert.NotContains(t, text, "data:image/png", "plain text part carries no image")
	})

	t.Run("payment failure email names the reason", func(t *testing.T) {
		n := NewNotification(NotificationTypePaymentFailed, uuid.New(), "linh@example.com", "Linh")
		n.BookingRef = "BUS-20240315-ABCDEF"
		n.Data["reason"] = "card declined"

		html, text, err := svc.generateContent(n)
		require.NoError(t, err)
		assert.Contains(t, html, "card declined")
		assert.Contains(t, text, "card declined")
	})
}
