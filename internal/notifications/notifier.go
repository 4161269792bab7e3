package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"busly/internal/bookings"
	"busly/internal/schedules"
	"busly/internal/users"
)

// UserDirectory resolves a booking's user to an email address. The auth
// repository satisfies it.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*users.User, error)
}

// ScheduleDirectory resolves trip details for the confirmation email. The
// schedules service satisfies it.
type ScheduleDirectory interface {
	GetSchedule(ctx context.Context, id uuid.UUID) (*schedules.ScheduleResponse, error)
}

// BookingNotifier turns booking events into broker messages. It implements
// bookings.Notifier.
type BookingNotifier struct {
	producer  NotificationProducer
	userDir   UserDirectory
	schedules ScheduleDirectory
}

func NewBookingNotifier(producer NotificationProducer, userDir UserDirectory, scheduleDir ScheduleDirectory) *BookingNotifier {
	return &BookingNotifier{
		producer:  producer,
		userDir:   userDir,
		schedules: scheduleDir,
	}
}

func (bn *BookingNotifier) NotifyBookingConfirmed(ctx context.Context, booking *bookings.Booking) error {
	user, err := bn.userDir.GetUserByID(ctx, booking.UserID.String())
	if err != nil {
		return fmt.Errorf("failed to resolve booking recipient: %w", err)
	}

	notification := NewNotification(NotificationTypeBookingConfirmed, user.ID, user.Email, user.FirstName)
	notification.Subject = fmt.Sprintf("Booking %s confirmed", booking.BookingRef)
	notification.BookingID = &booking.ID
	notification.BookingRef = booking.BookingRef
	notification.Data["total_price"] = booking.TotalPrice
	notification.Data["seat_labels"] = seatLabels(booking)

	if schedule, err := bn.schedules.GetSchedule(ctx, booking.ScheduleID); err == nil {
		notification.Data["route_name"] = fmt.Sprintf("%s (%s -> %s)", schedule.RouteName, schedule.Origin, schedule.Destination)
		notification.Data["departure_at"] = schedule.DepartureAt.Format("Mon, 02 Jan 2006 15:04")
	}

	notification.Status = NotificationStatusQueued
	return bn.producer.PublishNotification(ctx, notification)
}

func (bn *BookingNotifier) NotifyPaymentFailed(ctx context.Context, booking *bookings.Booking, reason string) error {
	user, err := bn.userDir.GetUserByID(ctx, booking.UserID.String())
	if err != nil {
		return fmt.Errorf("failed to resolve booking recipient: %w", err)
	}

	notification := NewNotification(NotificationTypePaymentFailed, user.ID, user.Email, user.FirstName)
	notification.Subject = fmt.Sprintf("Payment failed for booking %s", booking.BookingRef)
	notification.BookingID = &booking.ID
	notification.BookingRef = booking.BookingRef
	notification.Data["reason"] = reason

	notification.Status = NotificationStatusQueued
	return bn.producer.PublishNotification(ctx, notification)
}

func seatLabels(booking *bookings.Booking) string {
	labels := make([]string, 0, len(booking.Seats))
	for _, seat := range booking.Seats {
		labels = append(labels, seat.Label)
	}
	return strings.Join(labels, ", ")
}
