package bookings

import "time"

type BookingResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	ScheduleID    string           `json:"schedule_id"`
	Status        Status           `json:"status"`
	Temporary     bool             `json:"temporary"`
	OriginalPrice int64            `json:"original_price"`
	Discount      int64            `json:"discount"`
	TotalPrice    int64            `json:"total_price"`
	CouponID      string           `json:"coupon_id,omitempty"`
	PickUpPoint   string           `json:"pick_up_point,omitempty"`
	DropOffPoint  string           `json:"drop_off_point,omitempty"`
	BookingRef    string           `json:"booking_ref"`
	Seats         []BookedSeatInfo `json:"seats,omitempty"`
	ConfirmedAt   *time.Time       `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type BookedSeatInfo struct {
	SeatID string `json:"seat_id"`
	Label  string `json:"label"`
	Price  int64  `json:"price"`
}

// CreateBookingResponse pairs the new booking with the payment the user
// must complete to keep it.
type CreateBookingResponse struct {
	Booking BookingResponse   `json:"booking"`
	Payment PaymentIntentInfo `json:"payment"`
}

type PaymentIntentInfo struct {
	PaymentID   string `json:"payment_id"`
	Provider    string `json:"provider"`
	Amount      int64  `json:"amount"`
	RedirectURL string `json:"redirect_url"`
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
