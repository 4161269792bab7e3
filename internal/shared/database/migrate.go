package database

import (
	"busly/internal/bookings"
	"busly/internal/coupons"
	"busly/internal/payments"
	"busly/internal/schedules"
	"busly/internal/seats"
	"busly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&schedules.Schedule{},
		&seats.Seat{},
		&coupons.Coupon{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&payments.Payment{},
	)
}
