package coupons

// Quote is the computed effect of applying a coupon to a purchase
type Quote struct {
	CouponID string `json:"coupon_id"`
	Code     string `json:"code"`
	Original int64  `json:"original"`
	Discount int64  `json:"discount"`
	Payable  int64  `json:"payable"`
}
