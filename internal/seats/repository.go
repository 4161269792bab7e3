package seats

import (
	"context"
	"errors"
	"time"

	"busly/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Seat CRUD
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	GetSeatsBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]Seat, error)
	UpdateSeatNote(ctx context.Context, id uuid.UUID, note string) error

	// Atomic claim / release
	ClaimSeats(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error
	ClaimSeatsTx(tx *gorm.DB, seatIDs []uuid.UUID, bookingID uuid.UUID) error
	ReleaseSeats(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error
	ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
	ReleaseByBookingTx(tx *gorm.DB, bookingID uuid.UUID) (int64, error)

	// Passenger flow
	CheckIn(ctx context.Context, seatID uuid.UUID) error
	CheckOut(ctx context.Context, seatID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSeatNotFound
		}
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", seatIDs).
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) UpdateSeatNote(ctx context.Context, id uuid.UUID, note string) error {
	result := r.db.WithContext(ctx).Model(&Seat{}).
		Where("id = ?", id).
		Update("note", note)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrSeatNotFound
	}
	return nil
}

// ClaimSeats claims every requested seat or none of them. The conditional
// update only matches rows that are free or already held by this booking,
// so a partial match means some seat is taken and the whole claim rolls
// back. Re-claiming by the same booking is a no-op success.
func (r *repository) ClaimSeats(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.ClaimSeatsTx(tx, seatIDs, bookingID)
	})
}

// ClaimSeatsTx is the claim step for callers that already hold a
// transaction, e.g. booking confirmation which must flip the booking,
// the payment and the seats together.
func (r *repository) ClaimSeatsTx(tx *gorm.DB, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	if len(seatIDs) == 0 {
		return errs.ErrSeatNotFound
	}

	now := time.Now()
	result := tx.Model(&Seat{}).
		Where("id IN ? AND (claimed = ? OR claimed_by = ?)", seatIDs, false, bookingID).
		Updates(map[string]interface{}{
			"claimed":    true,
			"claimed_by": bookingID,
			"claimed_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(seatIDs)) {
		return errs.ErrSeatUnavailable
	}
	return nil
}

// ReleaseSeats frees seats held by the given booking. Seats already free
// or held by another booking are left untouched; releasing twice is safe.
func (r *repository) ReleaseSeats(ctx context.Context, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Seat{}).
		Where("id IN ? AND claimed_by = ?", seatIDs, bookingID).
		Updates(map[string]interface{}{
			"claimed":    false,
			"claimed_by": nil,
			"claimed_at": nil,
			"updated_at": time.Now(),
		}).Error
}

func (r *repository) ReleaseByBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	return r.ReleaseByBookingTx(r.db.WithContext(ctx), bookingID)
}

func (r *repository) ReleaseByBookingTx(tx *gorm.DB, bookingID uuid.UUID) (int64, error) {
	result := tx.Model(&Seat{}).
		Where("claimed_by = ?", bookingID).
		Updates(map[string]interface{}{
			"claimed":    false,
			"claimed_by": nil,
			"claimed_at": nil,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// PASSENGER FLOW

func (r *repository) CheckIn(ctx context.Context, seatID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Seat{}).
		Where("id = ? AND claimed = ?", seatID, true).
		Updates(map[string]interface{}{
			"check_in_at": time.Now(),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrSeatNotFound
	}
	return nil
}

func (r *repository) CheckOut(ctx context.Context, seatID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Seat{}).
		Where("id = ? AND check_in_at IS NOT NULL", seatID).
		Updates(map[string]interface{}{
			"check_out_at": time.Now(),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrSeatNotFound
	}
	return nil
}
