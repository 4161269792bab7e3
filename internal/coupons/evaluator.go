package coupons

import (
	"time"

	"busly/internal/shared/errs"
)

// Validate checks whether the coupon applies to a purchase of the given
// total at the given time. It does not consume usage; redemption happens
// inside the booking transaction.
func (c *Coupon) Validate(now time.Time, total int64) error {
	if !c.Active {
		return errs.ErrCouponInvalid
	}
	if !c.IsWithinWindow(now) {
		return errs.ErrCouponInvalid
	}
	if total < c.MinPurchase {
		return errs.ErrCouponInvalid
	}
	if c.IsExhausted() {
		return errs.ErrCouponExhausted
	}
	return nil
}

// CalculateDiscount computes the discount for a purchase total. A fixed
// discount takes precedence over a percentage. The result is capped by
// MaxDiscount when set, and never exceeds the total itself so the payable
// amount cannot go negative.
func (c *Coupon) CalculateDiscount(total int64) int64 {
	var discount int64
	if c.DiscountFixed > 0 {
		discount = c.DiscountFixed
	} else {
		discount = total * int64(c.DiscountPercent) / 100
	}

	if c.MaxDiscount > 0 && discount > c.MaxDiscount {
		discount = c.MaxDiscount
	}
	if discount > total {
		discount = total
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
