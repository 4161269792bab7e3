package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"busly/internal/coupons"
	"busly/internal/seats"
	"busly/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Core booking operations
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByIDWithSeats(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (*Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error

	// User and admin listings
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)

	// Pipeline transactions
	ConfirmBooking(ctx context.Context, bookingID, paymentID uuid.UUID) error
	CancelBooking(ctx context.Context, bookingID uuid.UUID) error
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db       *gorm.DB
	seatRepo seats.Repository
	coupons  coupons.Repository
}

func NewRepository(db *gorm.DB, seatRepo seats.Repository, couponRepo coupons.Repository) Repository {
	return &repository{
		db:       db,
		seatRepo: seatRepo,
		coupons:  couponRepo,
	}
}

// CreateBooking inserts the booking with its seat rows and, when a coupon
// is attached, consumes one usage in the same transaction. A coupon that
// ran out between validation and here fails the whole creation.
func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if booking.CouponID != nil {
			if err := r.coupons.RedeemTx(tx, *booking.CouponID); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByIDWithSeats(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("booking_ref = ?", ref).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)
	return r.paginate(baseQuery, query)
}

func (r *repository) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	baseQuery := r.db.WithContext(ctx).Model(&Booking{})
	return r.paginate(baseQuery, query)
}

func (r *repository) paginate(baseQuery *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if query.ScheduleID != "" {
		if scheduleID, err := uuid.Parse(query.ScheduleID); err == nil {
			baseQuery = baseQuery.Where("schedule_id = ?", scheduleID)
		}
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Seats").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

// ConfirmBooking settles a paid booking atomically: the booking flips to
// CONFIRMED, its seats are claimed and the payment is marked COMPLETED in
// one transaction. When two bookings paid for the same seat, the claim of
// the second confirmer comes up short and everything here rolls back,
// leaving that payment to the refund path.
func (r *repository) ConfirmBooking(ctx context.Context, bookingID, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the booking row so concurrent callbacks serialize here
		var booking Booking
		err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", bookingID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrBookingNotFound
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		// Provider retries replay callbacks; a booking this payment already
		// confirmed is acknowledged without touching anything.
		if booking.IsConfirmed() {
			return nil
		}
		if booking.IsCancelled() {
			return errs.ErrBookingNotPending
		}

		// 2. Claim every seat or none
		var seatRows []BookingSeat
		if err := tx.Where("booking_id = ?", bookingID).Find(&seatRows).Error; err != nil {
			return fmt.Errorf("failed to load booking seats: %w", err)
		}
		seatIDs := make([]uuid.UUID, 0, len(seatRows))
		for i := range seatRows {
			seatIDs = append(seatIDs, seatRows[i].SeatID)
		}
		if err := r.seatRepo.ClaimSeatsTx(tx, seatIDs, bookingID); err != nil {
			return err
		}

		// 3. Flip the booking
		now := time.Now()
		err = tx.Model(&Booking{}).
			Where("id = ?", bookingID).
			Updates(map[string]interface{}{
				"status":       StatusConfirmed,
				"temporary":    false,
				"confirmed_at": now,
				"updated_at":   now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		// 4. Settle the payment row
		result := tx.Table("payments").
			Where("id = ? AND status = ?", paymentID, "PENDING").
			Updates(map[string]interface{}{
				"status":       "COMPLETED",
				"processed_at": now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to settle payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.ErrPaymentNotFound
		}

		return nil
	})
}

// CancelBooking cancels and releases any seats the booking holds.
func (r *repository) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", bookingID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrBookingNotFound
			}
			return err
		}

		if booking.IsCancelled() {
			return nil
		}

		now := time.Now()
		err = tx.Model(&Booking{}).
			Where("id = ?", bookingID).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": now,
				"updated_at":   now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		if _, err := r.seatRepo.ReleaseByBookingTx(tx, bookingID); err != nil {
			return fmt.Errorf("failed to release seats: %w", err)
		}

		return nil
	})
}

// ExpirePending cancels every pending booking created before the cutoff
// and frees whatever seats those bookings held. Returns how many bookings
// were expired.
func (r *repository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	var expired int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Free seats first, while the bookings are still identifiable as
		// stale-pending.
		err := tx.Exec(`
			UPDATE seats SET claimed = false, claimed_by = NULL, claimed_at = NULL, updated_at = ?
			WHERE claimed_by IN (
				SELECT id FROM bookings WHERE status = ? AND created_at < ?
			)`, now, StatusPending, cutoff).Error
		if err != nil {
			return fmt.Errorf("failed to release expired seats: %w", err)
		}

		result := tx.Model(&Booking{}).
			Where("status = ? AND created_at < ?", StatusPending, cutoff).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to expire bookings: %w", result.Error)
		}

		expired = result.RowsAffected
		return nil
	})

	return expired, err
}

// Helper function to calculate total pages
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
