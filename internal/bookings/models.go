package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking defines the main booking structure. A booking starts PENDING
// and temporary; payment confirmation flips it to CONFIRMED in the same
// transaction that claims the seats, so a confirmed booking always owns
// every seat it lists.
type Booking struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	ScheduleID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"schedule_id"`
	Status        Status     `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED');default:'PENDING'" json:"status"`
	Temporary     bool       `gorm:"not null;default:true" json:"temporary"`
	OriginalPrice int64      `gorm:"not null" json:"original_price"`
	Discount      int64      `gorm:"not null;default:0" json:"discount"`
	TotalPrice    int64      `gorm:"not null" json:"total_price"`
	CouponID      *uuid.UUID `gorm:"type:uuid" json:"coupon_id,omitempty"`
	PickUpPoint   string     `gorm:"size:255" json:"pick_up_point"`
	DropOffPoint  string     `gorm:"size:255" json:"drop_off_point"`
	BookingRef    string     `gorm:"unique;not null" json:"booking_ref"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relationships
	Seats []BookingSeat `json:"seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// BookingSeat pins one seat to one booking at the price charged for it.
type BookingSeat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	SeatID    uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	Label     string    `gorm:"not null" json:"label"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingSeat
func (BookingSeat) TableName() string {
	return "booking_seats"
}

// Helper methods for booking management
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Seats))
	for i := range b.Seats {
		ids = append(ids, b.Seats[i].SeatID)
	}
	return ids
}

// Convert Booking to BookingResponse
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:            b.ID.String(),
		UserID:        b.UserID.String(),
		ScheduleID:    b.ScheduleID.String(),
		Status:        b.Status,
		Temporary:     b.Temporary,
		OriginalPrice: b.OriginalPrice,
		Discount:      b.Discount,
		TotalPrice:    b.TotalPrice,
		PickUpPoint:   b.PickUpPoint,
		DropOffPoint:  b.DropOffPoint,
		BookingRef:    b.BookingRef,
		ConfirmedAt:   b.ConfirmedAt,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
	}
	if b.CouponID != nil {
		resp.CouponID = b.CouponID.String()
	}
	for i := range b.Seats {
		resp.Seats = append(resp.Seats, BookedSeatInfo{
			SeatID: b.Seats[i].SeatID.String(),
			Label:  b.Seats[i].Label,
			Price:  b.Seats[i].Price,
		})
	}
	return resp
}
