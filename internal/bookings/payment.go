package bookings

import (
	"context"

	"github.com/google/uuid"
)

// PaymentIntent is what the payment layer hands back after opening a
// transaction with a provider.
type PaymentIntent struct {
	PaymentID   uuid.UUID
	Provider    string
	Amount      int64
	RedirectURL string
}

// PaymentInitiator opens a payment for a freshly created booking. The
// payments package implements it; declaring it here keeps the import
// direction payments -> bookings.
type PaymentInitiator interface {
	InitiateForBooking(ctx context.Context, booking *Booking, provider string) (*PaymentIntent, error)
}
