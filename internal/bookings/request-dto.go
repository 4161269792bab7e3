package bookings

// CreateBookingRequest starts the reservation pipeline: pick seats on a
// schedule, optionally apply a coupon, and name the payment provider.
type CreateBookingRequest struct {
	ScheduleID   string   `json:"schedule_id" binding:"required,uuid"`
	SeatIDs      []string `json:"seat_ids" binding:"required,min=1,max=10"`
	CouponCode   string   `json:"coupon_code" binding:"omitempty,min=3,max=50"`
	Provider     string   `json:"provider" binding:"required,oneof=vnpay momo zalopay"`
	PickUpPoint  string   `json:"pick_up_point" binding:"omitempty,max=255"`
	DropOffPoint string   `json:"drop_off_point" binding:"omitempty,max=255"`
}

type BookingListQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
	ScheduleID string `form:"schedule_id" binding:"omitempty,uuid"`
}
