package coupons

import (
	"context"
	"errors"
	"strings"

	"busly/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, coupon *Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	GetAll(ctx context.Context) ([]Coupon, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// RedeemTx consumes one usage inside the caller's transaction.
	RedeemTx(tx *gorm.DB, couponID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, coupon *Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	var coupon Coupon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	var coupon Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Coupon, error) {
	var coupon Coupon

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCouponNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&coupon).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&coupon).Error; err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Coupon{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrCouponNotFound
	}
	return nil
}

// RedeemTx increments usage only while the limit holds, so two bookings
// racing for the last usage cannot both succeed. Zero rows means the
// coupon was exhausted or deactivated between validation and redemption.
func (r *repository) RedeemTx(tx *gorm.DB, couponID uuid.UUID) error {
	result := tx.Model(&Coupon{}).
		Where("id = ? AND active = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", couponID, true).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrCouponExhausted
	}
	return nil
}
