package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"busly/internal/coupons"
	"busly/internal/schedules"
	"busly/internal/seats"
	"busly/internal/shared/errs"
	"busly/pkg/logger"

	"github.com/google/uuid"
)

// Notifier pushes a booking event onto the notification pipeline. Nil-safe
// implementations exist for deployments without a broker.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, booking *Booking) error
	NotifyPaymentFailed(ctx context.Context, booking *Booking, reason string) error
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*CreateBookingResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) error

	// ConfirmBooking is driven by payment reconciliation after a verified
	// successful callback.
	ConfirmBooking(ctx context.Context, bookingID, paymentID uuid.UUID) error
	// FailBooking cancels a booking whose payment was refused or could not
	// be opened.
	FailBooking(ctx context.Context, bookingID uuid.UUID, reason string) error

	SetPaymentInitiator(initiator PaymentInitiator)
}

type service struct {
	repo            Repository
	scheduleService schedules.Service
	seatService     seats.Service
	couponRepo      coupons.Repository
	initiator       PaymentInitiator
	notifier        Notifier
	logger          *logger.Logger
}

func NewService(repo Repository, scheduleService schedules.Service, seatService seats.Service, couponRepo coupons.Repository, notifier Notifier) Service {
	return &service{
		repo:            repo,
		scheduleService: scheduleService,
		seatService:     seatService,
		couponRepo:      couponRepo,
		notifier:        notifier,
		logger:          logger.GetDefault(),
	}
}

// SetPaymentInitiator is setter injection: payments depends on bookings,
// so the wiring layer closes the loop after both services exist.
func (s *service) SetPaymentInitiator(initiator PaymentInitiator) {
	s.initiator = initiator
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*CreateBookingResponse, error) {
	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, errs.ErrScheduleNotFound
	}

	schedule, err := s.scheduleService.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != schedules.StatusScheduled || !time.Now().Before(schedule.DepartureAt) {
		return nil, errs.New("SCHEDULE_NOT_BOOKABLE", 409, "schedule is not open for booking")
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	// Early availability check. The authoritative all-or-nothing claim
	// happens at confirmation; this just fails obvious double-picks fast.
	seatRows, err := s.seatService.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(seatRows) != len(seatIDs) {
		return nil, errs.ErrSeatNotFound
	}
	for i := range seatRows {
		if seatRows[i].ScheduleID != scheduleID {
			return nil, errs.ErrSeatNotFound
		}
		if seatRows[i].Claimed {
			return nil, errs.ErrSeatUnavailable
		}
	}

	originalPrice := schedule.PricePerSeat * int64(len(seatRows))

	// Coupon evaluation; redemption happens inside the create transaction
	var discount int64
	var couponID *uuid.UUID
	if req.CouponCode != "" {
		coupon, err := s.couponRepo.GetByCode(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := coupon.Validate(time.Now(), originalPrice); err != nil {
			return nil, err
		}
		discount = coupon.CalculateDiscount(originalPrice)
		couponID = &coupon.ID
	}

	bookingRef, err := generateBookingReference()
	if err != nil {
		return nil, err
	}

	booking := &Booking{
		UserID:        userID,
		ScheduleID:    scheduleID,
		Status:        StatusPending,
		Temporary:     true,
		OriginalPrice: originalPrice,
		Discount:      discount,
		TotalPrice:    originalPrice - discount,
		CouponID:      couponID,
		PickUpPoint:   req.PickUpPoint,
		DropOffPoint:  req.DropOffPoint,
		BookingRef:    bookingRef,
	}
	for i := range seatRows {
		booking.Seats = append(booking.Seats, BookingSeat{
			SeatID: seatRows[i].ID,
			Label:  seatRows[i].Label,
			Price:  schedule.PricePerSeat,
		})
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.LogBookingCreated(ctx, booking.ID.String(), scheduleID.String(), userID.String())

	intent, err := s.initiator.InitiateForBooking(ctx, booking, req.Provider)
	if err != nil {
		// No payment, no reservation: take the booking back out of the way
		if cancelErr := s.repo.CancelBooking(ctx, booking.ID); cancelErr != nil {
			s.logger.ErrorWithContext(ctx, "Failed to cancel booking after payment initiation failure", cancelErr, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
		return nil, err
	}

	resp := &CreateBookingResponse{
		Booking: booking.ToResponse(),
		Payment: PaymentIntentInfo{
			PaymentID:   intent.PaymentID.String(),
			Provider:    intent.Provider,
			Amount:      intent.Amount,
			RedirectURL: intent.RedirectURL,
		},
	}
	return resp, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByIDWithSeats(ctx, bookingID)
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*PaginatedBookings, error) {
	bookings, totalCount, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return buildPaginated(bookings, totalCount, query), nil
}

func (s *service) GetAllBookings(ctx context.Context, query BookingListQuery) (*PaginatedBookings, error) {
	bookings, totalCount, err := s.repo.GetAllBookings(ctx, query)
	if err != nil {
		return nil, err
	}
	return buildPaginated(bookings, totalCount, query), nil
}

func (s *service) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if !isAdmin && booking.UserID != userID {
		return errs.ErrForbidden
	}
	if !booking.Status.CanBeCancelled() {
		return errs.ErrBookingNotPending
	}

	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		return err
	}

	s.seatService.InvalidateOccupancy(ctx, booking.ScheduleID)
	return nil
}

func (s *service) ConfirmBooking(ctx context.Context, bookingID, paymentID uuid.UUID) error {
	if err := s.repo.ConfirmBooking(ctx, bookingID, paymentID); err != nil {
		return err
	}

	s.logger.LogBookingConfirmed(ctx, bookingID.String(), paymentID.String())

	booking, err := s.repo.GetBookingByIDWithSeats(ctx, bookingID)
	if err != nil {
		return nil // confirmed; response enrichment is best effort
	}

	s.seatService.InvalidateOccupancy(ctx, booking.ScheduleID)

	if s.notifier != nil {
		if err := s.notifier.NotifyBookingConfirmed(ctx, booking); err != nil {
			s.logger.ErrorWithContext(ctx, "Failed to publish booking confirmation", err, map[string]interface{}{
				"booking_id": bookingID.String(),
			})
		}
	}

	return nil
}

func (s *service) FailBooking(ctx context.Context, bookingID uuid.UUID, reason string) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.IsConfirmed() {
		// A settled booking is never torn down by a late failure signal
		return errs.ErrBookingNotPending
	}
	if booking.IsCancelled() {
		return nil
	}

	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		return err
	}

	s.seatService.InvalidateOccupancy(ctx, booking.ScheduleID)

	if s.notifier != nil {
		if err := s.notifier.NotifyPaymentFailed(ctx, booking, reason); err != nil {
			s.logger.ErrorWithContext(ctx, "Failed to publish payment failure notification", err, map[string]interface{}{
				"booking_id": bookingID.String(),
			})
		}
	}

	return nil
}

func buildPaginated(bookings []Booking, totalCount int64, query BookingListQuery) *PaginatedBookings {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, bookings[i].ToResponse())
	}

	return &PaginatedBookings{
		Bookings:   responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(totalCount, query.Limit),
	}
}

func parseSeatIDs(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errs.ErrSeatNotFound
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// generateBookingReference generates a unique booking reference
func generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("BUS-%s-%s", timestamp, string(randomPart)), nil
}
