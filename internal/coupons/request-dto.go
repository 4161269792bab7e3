package coupons

import "time"

type CreateCouponRequest struct {
	Code            string    `json:"code" binding:"required,min=3,max=50"`
	Description     string    `json:"description" binding:"max=255"`
	DiscountPercent int       `json:"discount_percent" binding:"min=0,max=100"`
	DiscountFixed   int64     `json:"discount_fixed" binding:"min=0"`
	MinPurchase     int64     `json:"min_purchase" binding:"min=0"`
	MaxDiscount     int64     `json:"max_discount" binding:"min=0"`
	ValidFrom       time.Time `json:"valid_from" binding:"required"`
	ValidTo         time.Time `json:"valid_to" binding:"required"`
	UsageLimit      *int      `json:"usage_limit" binding:"omitempty,min=1"`
}

type UpdateCouponRequest struct {
	Description     *string    `json:"description" binding:"omitempty,max=255"`
	DiscountPercent *int       `json:"discount_percent" binding:"omitempty,min=0,max=100"`
	DiscountFixed   *int64     `json:"discount_fixed" binding:"omitempty,min=0"`
	MinPurchase     *int64     `json:"min_purchase" binding:"omitempty,min=0"`
	MaxDiscount     *int64     `json:"max_discount" binding:"omitempty,min=0"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidTo         *time.Time `json:"valid_to"`
	UsageLimit      *int       `json:"usage_limit" binding:"omitempty,min=1"`
	Active          *bool      `json:"active"`
}

type QuoteRequest struct {
	Code  string `json:"code" binding:"required"`
	Total int64  `json:"total" binding:"required,min=0"`
}
