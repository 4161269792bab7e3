package payments

import (
	"context"
	"errors"
	"time"

	"busly/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByProviderTxID(ctx context.Context, providerTxID string) (*Payment, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
	SetProviderTxID(ctx context.Context, id uuid.UUID, providerTxID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByProviderTxID(ctx context.Context, providerTxID string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("provider_tx_id = ?", providerTxID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("related_id = ? AND related_type = ?", bookingID, "booking").
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *repository) SetProviderTxID(ctx context.Context, id uuid.UUID, providerTxID string) error {
	result := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", id).
		Update("provider_tx_id", providerTxID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrPaymentNotFound
	}
	return nil
}

// MarkFailed settles a payment as FAILED only while it is still pending;
// a completed payment is never demoted.
func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":         StatusFailed,
			"failure_reason": reason,
			"processed_at":   now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrPaymentNotFound
	}
	return nil
}

// ExpirePending fails every payment still pending from before the cutoff.
func (r *repository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Payment{}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":         StatusFailed,
			"failure_reason": "payment window expired",
			"processed_at":   now,
			"updated_at":     now,
		})
	return result.RowsAffected, result.Error
}
