package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"busly/internal/bookings"
	"busly/internal/shared/config"
	"busly/internal/shared/errs"
	"busly/pkg/logger"

	"github.com/google/uuid"
)

// BookingConfirmer is the slice of the booking service the reconciliation
// path needs: settle on success, tear down on failure.
type BookingConfirmer interface {
	ConfirmBooking(ctx context.Context, bookingID, paymentID uuid.UUID) error
	FailBooking(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// CallbackAck is the reconciliation verdict for one callback. Duplicate
// acks tell the provider to stop retrying without implying new work was
// done.
type CallbackAck struct {
	PaymentID string `json:"payment_id"`
	Status    Status `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type Service interface {
	bookings.PaymentInitiator

	HandleCallback(ctx context.Context, provider string, params map[string]string) (*CallbackAck, error)
	// HandleReturn converges on the callback logic but answers with a
	// redirect; the payer-facing return leg is never authoritative on its
	// own, it is just a signed hint that usually arrives first.
	HandleReturn(ctx context.Context, provider string, params map[string]string) string
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetBookingPayments(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo      Repository
	registry  *Registry
	confirmer BookingConfirmer
	cfg       config.PaymentConfig
	logger    *logger.Logger
}

func NewService(repo Repository, registry *Registry, confirmer BookingConfirmer, cfg config.PaymentConfig) Service {
	return &service{
		repo:      repo,
		registry:  registry,
		confirmer: confirmer,
		cfg:       cfg,
		logger:    logger.GetDefault(),
	}
}

// InitiateForBooking opens a payment with the chosen provider for a fresh
// booking. The payment row is created first so a crash mid-initiation
// leaves a pending record the sweeper can fail, never a dangling charge.
func (s *service) InitiateForBooking(ctx context.Context, booking *bookings.Booking, provider string) (*bookings.PaymentIntent, error) {
	adapter, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	payment := &Payment{
		PayerID:     booking.UserID,
		Amount:      booking.TotalPrice,
		Currency:    "VND",
		Provider:    provider,
		Status:      StatusPending,
		RelatedID:   booking.ID,
		RelatedType: "booking",
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	returnURL := fmt.Sprintf("%s/payments/return/%s", s.cfg.CallbackBaseURL, provider)
	result, err := adapter.Initiate(ctx, payment, returnURL)
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, payment.ID, "provider initiation failed"); markErr != nil {
			s.logger.ErrorWithContext(ctx, "Failed to mark payment failed after initiation error", markErr, map[string]interface{}{
				"payment_id": payment.ID.String(),
			})
		}
		s.logger.LogPaymentFailed(ctx, payment.ID.String(), provider, "initiation failed")
		return nil, err
	}

	if err := s.repo.SetProviderTxID(ctx, payment.ID, result.ProviderTxID); err != nil {
		return nil, err
	}

	return &bookings.PaymentIntent{
		PaymentID:   payment.ID,
		Provider:    provider,
		Amount:      payment.Amount,
		RedirectURL: result.RedirectURL,
	}, nil
}

// HandleCallback processes one provider callback end to end: verify the
// signature, find the payment, drop duplicates, then settle or fail. Every
// mutation sits behind verification, so forged callbacks change nothing.
func (s *service) HandleCallback(ctx context.Context, provider string, params map[string]string) (*CallbackAck, error) {
	adapter, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	result := adapter.VerifyCallback(params)
	if !result.Verified {
		s.logger.LogCallbackRejected(ctx, provider, "signature verification failed")
		return nil, errs.ErrVerificationFailed
	}

	payment, err := s.repo.GetByProviderTxID(ctx, result.ProviderTxID)
	if err != nil {
		s.logger.LogCallbackRejected(ctx, provider, "unknown provider transaction id")
		return nil, err
	}

	// Providers retry until acknowledged; a settled payment is
	// acknowledged again without touching any state.
	if payment.IsSettled() {
		return &CallbackAck{
			PaymentID: payment.ID.String(),
			Status:    payment.Status,
			Duplicate: true,
		}, nil
	}

	if result.Amount > 0 && result.Amount != payment.Amount {
		reason := fmt.Sprintf("amount mismatch: callback %d, payment %d", result.Amount, payment.Amount)
		s.failPayment(ctx, payment, reason)
		return nil, errs.ErrVerificationFailed
	}

	if !result.Succeeded {
		s.failPayment(ctx, payment, fmt.Sprintf("provider reported failure (status %s)", result.RawStatus))
		return &CallbackAck{PaymentID: payment.ID.String(), Status: StatusFailed}, nil
	}

	// Verified success: settle booking, seats and payment atomically
	err = s.confirmer.ConfirmBooking(ctx, payment.RelatedID, payment.ID)
	switch {
	case err == nil:
		s.logger.LogPaymentCompleted(ctx, payment.ID.String(), provider, result.ProviderTxID)
		return &CallbackAck{PaymentID: payment.ID.String(), Status: StatusCompleted}, nil

	case errors.Is(err, errs.ErrSeatUnavailable), errors.Is(err, errs.ErrBookingNotPending):
		// Race loser: someone else confirmed those seats first, or the
		// booking already expired. Money was taken, so flag the refund.
		s.failPayment(ctx, payment, "refund required: seats no longer available")
		return &CallbackAck{PaymentID: payment.ID.String(), Status: StatusFailed}, nil

	default:
		// Transient failure: no ack, the provider will retry
		return nil, err
	}
}

func (s *service) failPayment(ctx context.Context, payment *Payment, reason string) {
	if err := s.repo.MarkFailed(ctx, payment.ID, reason); err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to mark payment failed", err, map[string]interface{}{
			"payment_id": payment.ID.String(),
		})
	}
	if err := s.confirmer.FailBooking(ctx, payment.RelatedID, reason); err != nil && !errors.Is(err, errs.ErrBookingNotPending) {
		s.logger.ErrorWithContext(ctx, "Failed to cancel booking for failed payment", err, map[string]interface{}{
			"booking_id": payment.RelatedID.String(),
		})
	}
	s.logger.LogPaymentFailed(ctx, payment.ID.String(), payment.Provider, reason)
}

func (s *service) HandleReturn(ctx context.Context, provider string, params map[string]string) string {
	ack, err := s.HandleCallback(ctx, provider, params)

	values := url.Values{}
	switch {
	case err != nil:
		// The server-to-server callback remains the source of truth; the
		// payer just gets sent to the result page without a verdict.
		values.Set("status", "unknown")
	case ack.Status == StatusCompleted:
		values.Set("status", "success")
		values.Set("payment_id", ack.PaymentID)
	default:
		values.Set("status", "failed")
		values.Set("payment_id", ack.PaymentID)
	}

	return fmt.Sprintf("%s?%s", s.cfg.ResultPageURL, values.Encode())
}

func (s *service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBookingPayments(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}

// ExpirePending lets the sweeper fail payments abandoned at the provider.
func (s *service) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.ExpirePending(ctx, cutoff)
}
