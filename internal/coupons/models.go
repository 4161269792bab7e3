package coupons

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a discount code. Fixed amount wins over percent when both
// are set; amounts are minor currency units.
type Coupon struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code            string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description     string    `gorm:"size:255" json:"description"`
	DiscountPercent int       `gorm:"not null;default:0;check:discount_percent >= 0 AND discount_percent <= 100" json:"discount_percent"`
	DiscountFixed   int64     `gorm:"not null;default:0;check:discount_fixed >= 0" json:"discount_fixed"`
	MinPurchase     int64     `gorm:"not null;default:0" json:"min_purchase"`
	MaxDiscount     int64     `gorm:"not null;default:0" json:"max_discount"` // 0 means uncapped
	ValidFrom       time.Time `gorm:"not null" json:"valid_from"`
	ValidTo         time.Time `gorm:"not null" json:"valid_to"`
	UsageLimit      *int      `json:"usage_limit,omitempty"` // nil means unlimited
	UsageCount      int       `gorm:"not null;default:0" json:"usage_count"`
	Active          bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the table name for Coupon
func (Coupon) TableName() string {
	return "coupons"
}

func (c *Coupon) IsExhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

func (c *Coupon) IsWithinWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}
