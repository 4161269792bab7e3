package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*Coupon, error)
	GetCoupon(ctx context.Context, id uuid.UUID) (*Coupon, error)
	ListCoupons(ctx context.Context) ([]Coupon, error)
	UpdateCoupon(ctx context.Context, id uuid.UUID, req *UpdateCouponRequest) (*Coupon, error)
	DeleteCoupon(ctx context.Context, id uuid.UUID) error

	// Quote validates a code against a purchase total and prices the
	// discount, without consuming usage.
	Quote(ctx context.Context, code string, total int64) (*Quote, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*Coupon, error) {
	coupon := &Coupon{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		DiscountFixed:   req.DiscountFixed,
		MinPurchase:     req.MinPurchase,
		MaxDiscount:     req.MaxDiscount,
		ValidFrom:       req.ValidFrom,
		ValidTo:         req.ValidTo,
		UsageLimit:      req.UsageLimit,
		Active:          true,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *service) GetCoupon(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListCoupons(ctx context.Context) ([]Coupon, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) UpdateCoupon(ctx context.Context, id uuid.UUID, req *UpdateCouponRequest) (*Coupon, error) {
	updates := make(map[string]interface{})

	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DiscountPercent != nil {
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.DiscountFixed != nil {
		updates["discount_fixed"] = *req.DiscountFixed
	}
	if req.MinPurchase != nil {
		updates["min_purchase"] = *req.MinPurchase
	}
	if req.MaxDiscount != nil {
		updates["max_discount"] = *req.MaxDiscount
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidTo != nil {
		updates["valid_to"] = *req.ValidTo
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	return s.repo.Update(ctx, id, updates)
}

func (s *service) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Quote(ctx context.Context, code string, total int64) (*Quote, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := coupon.Validate(time.Now(), total); err != nil {
		return nil, err
	}

	discount := coupon.CalculateDiscount(total)
	return &Quote{
		CouponID: coupon.ID.String(),
		Code:     coupon.Code,
		Original: total,
		Discount: discount,
		Payable:  total - discount,
	}, nil
}
