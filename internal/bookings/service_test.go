package bookings

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"busly/internal/coupons"
	"busly/internal/schedules"
	"busly/internal/seats"
	"busly/internal/shared/errs"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateBooking(ctx context.Context, booking *Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *mockRepository) GetBookingByIDWithSeats(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *mockRepository) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *mockRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	args := m.Called(ctx, id, status, cancelledAt)
	return args.Error(0)
}

func (m *mockRepository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]Booking), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) ConfirmBooking(ctx context.Context, bookingID, paymentID uuid.UUID) error {
	args := m.Called(ctx, bookingID, paymentID)
	return args.Error(0)
}

func (m *mockRepository) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *mockRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockScheduleService struct {
	mock.Mock
}

func (m *mockScheduleService) CreateSchedule(ctx context.Context, req *schedules.CreateScheduleRequest) (*schedules.ScheduleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedules.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*schedules.ScheduleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedules.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) UpdateSchedule(ctx context.Context, id uuid.UUID, req *schedules.UpdateScheduleRequest) (*schedules.ScheduleResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedules.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) ListSchedules(ctx context.Context, query schedules.ScheduleListQuery) (*schedules.PaginatedSchedules, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedules.PaginatedSchedules), args.Error(1)
}

func (m *mockScheduleService) GetUpcoming(ctx context.Context, limit int) ([]schedules.ScheduleResponse, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedules.ScheduleResponse), args.Error(1)
}

type mockSeatService struct {
	mock.Mock
}

func (m *mockSeatService) GenerateSeats(ctx context.Context, scheduleID uuid.UUID, labels []string) error {
	args := m.Called(ctx, scheduleID, labels)
	return args.Error(0)
}

func (m *mockSeatService) GetSeat(ctx context.Context, seatID uuid.UUID) (*seats.Seat, error) {
	args := m.Called(ctx, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seats.Seat), args.Error(1)
}

func (m *mockSeatService) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]seats.Seat, error) {
	args := m.Called(ctx, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seats.Seat), args.Error(1)
}

func (m *mockSeatService) GetOccupancy(ctx context.Context, scheduleID uuid.UUID) (*seats.OccupancyResponse, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seats.OccupancyResponse), args.Error(1)
}

func (m *mockSeatService) ClaimSeats(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	args := m.Called(ctx, scheduleID, seatIDs, bookingID)
	return args.Error(0)
}

func (m *mockSeatService) ReleaseBooking(ctx context.Context, scheduleID, bookingID uuid.UUID) (int64, error) {
	args := m.Called(ctx, scheduleID, bookingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSeatService) InvalidateOccupancy(ctx context.Context, scheduleID uuid.UUID) {
	m.Called(ctx, scheduleID)
}

func (m *mockSeatService) CheckInPassenger(ctx context.Context, scheduleID, seatID uuid.UUID) error {
	args := m.Called(ctx, scheduleID, seatID)
	return args.Error(0)
}

func (m *mockSeatService) CheckOutPassenger(ctx context.Context, scheduleID, seatID uuid.UUID) error {
	args := m.Called(ctx, scheduleID, seatID)
	return args.Error(0)
}

func (m *mockSeatService) UpdateNote(ctx context.Context, seatID uuid.UUID, note string) error {
	args := m.Called(ctx, seatID, note)
	return args.Error(0)
}

type mockCouponRepo struct {
	mock.Mock
}

func (m *mockCouponRepo) Create(ctx context.Context, coupon *coupons.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *mockCouponRepo) GetByID(ctx context.Context, id uuid.UUID) (*coupons.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Coupon), args.Error(1)
}

func (m *mockCouponRepo) GetByCode(ctx context.Context, code string) (*coupons.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Coupon), args.Error(1)
}

func (m *mockCouponRepo) GetAll(ctx context.Context) ([]coupons.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coupons.Coupon), args.Error(1)
}

func (m *mockCouponRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*coupons.Coupon, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Coupon), args.Error(1)
}

func (m *mockCouponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCouponRepo) RedeemTx(tx *gorm.DB, couponID uuid.UUID) error {
	args := m.Called(tx, couponID)
	return args.Error(0)
}

type mockInitiator struct {
	mock.Mock
}

func (m *mockInitiator) InitiateForBooking(ctx context.Context, booking *Booking, provider string) (*PaymentIntent, error) {
	args := m.Called(ctx, booking, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyBookingConfirmed(ctx context.Context, booking *Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *mockNotifier) NotifyPaymentFailed(ctx context.Context, booking *Booking, reason string) error {
	args := m.Called(ctx, booking, reason)
	return args.Error(0)
}

type serviceFixture struct {
	repo      *mockRepository
	schedules *mockScheduleService
	seats     *mockSeatService
	coupons   *mockCouponRepo
	initiator *mockInitiator
	notifier  *mockNotifier
	svc       Service
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		repo:      new(mockRepository),
		schedules: new(mockScheduleService),
		seats:     new(mockSeatService),
		coupons:   new(mockCouponRepo),
		initiator: new(mockInitiator),
		notifier:  new(mockNotifier),
	}
	f.svc = NewService(f.repo, f.schedules, f.seats, f.coupons, f.notifier)
	f.svc.SetPaymentInitiator(f.initiator)
	return f
}

func bookableSchedule(id uuid.UUID) *schedules.ScheduleResponse {
	return &schedules.ScheduleResponse{
		ID:           id.String(),
		RouteName:    "HCMC Express",
		Status:       schedules.StatusScheduled,
		DepartureAt:  time.Now().Add(24 * time.Hour),
		PricePerSeat: 350000,
	}
}

func availableSeats(scheduleID uuid.UUID, ids ...uuid.UUID) []seats.Seat {
	rows := make([]seats.Seat, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, seats.Seat{
			ID:         id,
			ScheduleID: scheduleID,
			Label:      string(rune('A' + i)),
		})
	}
	return rows
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scheduleID := uuid.New()
	seatA, seatB := uuid.New(), uuid.New()

	baseRequest := func() *CreateBookingRequest {
		return &CreateBookingRequest{
			ScheduleID: scheduleID.String(),
			SeatIDs:    []string{seatA.String(), seatB.String()},
			Provider:   "vnpay",
		}
	}

	t.Run("happy path prices seats and returns the payment intent", func(t *testing.T) {
		f := newFixture()
		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, []uuid.UUID{seatA, seatB}).
			Return(availableSeats(scheduleID, seatA, seatB), nil)
		f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
			return b.Status == StatusPending &&
				b.OriginalPrice == 700000 &&
				b.TotalPrice == 700000 &&
				len(b.Seats) == 2
		})).Return(nil)
		f.initiator.On("InitiateForBooking", mock.Anything, mock.Anything, "vnpay").
			Return(&PaymentIntent{PaymentID: uuid.New(), Provider: "vnpay", Amount: 700000, RedirectURL: "https://pay.example/x"}, nil)

		resp, err := f.svc.CreateBooking(ctx, userID, baseRequest())
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/x", resp.Payment.RedirectURL)
		assert.Equal(t, int64(700000), resp.Payment.Amount)
		f.repo.AssertExpectations(t)
	})

	t.Run("coupon discount is applied but not consumed here", func(t *testing.T) {
		f := newFixture()
		req := baseRequest()
		req.CouponCode = "WELCOME10"

		coupon := &coupons.Coupon{
			ID:              uuid.New(),
			Code:            "WELCOME10",
			DiscountPercent: 10,
			ValidFrom:       time.Now().Add(-time.Hour),
			ValidTo:         time.Now().Add(time.Hour),
			Active:          true,
		}

		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, mock.Anything).
			Return(availableSeats(scheduleID, seatA, seatB), nil)
		f.coupons.On("GetByCode", mock.Anything, "WELCOME10").Return(coupon, nil)
		f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
			return b.Discount == 70000 && b.TotalPrice == 630000 && b.CouponID != nil && *b.CouponID == coupon.ID
		})).Return(nil)
		f.initiator.On("InitiateForBooking", mock.Anything, mock.Anything, "vnpay").
			Return(&PaymentIntent{PaymentID: uuid.New(), Amount: 630000}, nil)

		_, err := f.svc.CreateBooking(ctx, userID, req)
		require.NoError(t, err)
		f.coupons.AssertNotCalled(t, "RedeemTx")
	})

	t.Run("expired coupon rejects the booking", func(t *testing.T) {
		f := newFixture()
		req := baseRequest()
		req.CouponCode = "EXPIRED"

		expired := &coupons.Coupon{
			Code:      "EXPIRED",
			ValidFrom: time.Now().Add(-2 * time.Hour),
			ValidTo:   time.Now().Add(-time.Hour),
			Active:    true,
		}

		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, mock.Anything).
			Return(availableSeats(scheduleID, seatA, seatB), nil)
		f.coupons.On("GetByCode", mock.Anything, "EXPIRED").Return(expired, nil)

		_, err := f.svc.CreateBooking(ctx, userID, req)
		assert.ErrorIs(t, err, errs.ErrCouponInvalid)
		f.repo.AssertNotCalled(t, "CreateBooking")
	})

	t.Run("departed schedule is not bookable", func(t *testing.T) {
		f := newFixture()
		schedule := bookableSchedule(scheduleID)
		schedule.Status = schedules.StatusDeparted
		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(schedule, nil)

		_, err := f.svc.CreateBooking(ctx, userID, baseRequest())
		require.Error(t, err)
		assert.Equal(t, "SCHEDULE_NOT_BOOKABLE", errs.Code(err))
	})

	t.Run("past departure is not bookable even when scheduled", func(t *testing.T) {
		f := newFixture()
		schedule := bookableSchedule(scheduleID)
		schedule.DepartureAt = time.Now().Add(-time.Minute)
		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(schedule, nil)

		_, err := f.svc.CreateBooking(ctx, userID, baseRequest())
		require.Error(t, err)
		assert.Equal(t, "SCHEDULE_NOT_BOOKABLE", errs.Code(err))
	})

	t.Run("already claimed seat fails fast", func(t *testing.T) {
		f := newFixture()
		rows := availableSeats(scheduleID, seatA, seatB)
		rows[1].Claimed = true

		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, mock.Anything).Return(rows, nil)

		_, err := f.svc.CreateBooking(ctx, userID, baseRequest())
		assert.ErrorIs(t, err, errs.ErrSeatUnavailable)
	})

	t.Run("seat from another schedule is rejected", func(t *testing.T) {
		f := newFixture()
		rows := availableSeats(scheduleID, seatA, seatB)
		rows[0].ScheduleID = uuid.New()

		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, mock.Anything).Return(rows, nil)

		_, err := f.svc.CreateBooking(ctx, userID, baseRequest())
		assert.ErrorIs(t, err, errs.ErrSeatNotFound)
	})

	t.Run("duplicate seat ids collapse to one", func(t *testing.T) {
		f := newFixture()
		req := baseRequest()
		req.SeatIDs = []string{seatA.String(), seatA.String()}

		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, []uuid.UUID{seatA}).
			Return(availableSeats(scheduleID, seatA), nil)
		f.repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
			return len(b.Seats) == 1 && b.OriginalPrice == 350000
		})).Return(nil)
		f.initiator.On("InitiateForBooking", mock.Anything, mock.Anything, "vnpay").
			Return(&PaymentIntent{PaymentID: uuid.New()}, nil)

		_, err := f.svc.CreateBooking(ctx, userID, req)
		require.NoError(t, err)
		f.seats.AssertExpectations(t)
	})

	t.Run("payment initiation failure rolls the booking back", func(t *testing.T) {
		f := newFixture()
		f.schedules.On("GetSchedule", mock.Anything, scheduleID).Return(bookableSchedule(scheduleID), nil)
		f.seats.On("GetSeatsByIDs", mock.Anything, mock.Anything).
			Return(availableSeats(scheduleID, seatA, seatB), nil)
		f.repo.On("CreateBooking", mock.Anything, mock.Anything).Return(nil)
		f.initiator.On("InitiateForBooking", mock.Anything, mock.Anything, "vnpay").
			Return(nil, errs.ErrProvider)
		f.repo.On("CancelBooking", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.CreateBooking(ctx, userID, baseRequest())
		assert.ErrorIs(t, err, errs.ErrProvider)
		f.repo.AssertCalled(t, "CancelBooking", mock.Anything, mock.Anything)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	bookingID := uuid.New()
	scheduleID := uuid.New()

	pending := func() *Booking {
		return &Booking{ID: bookingID, UserID: owner, ScheduleID: scheduleID, Status: StatusPending}
	}

	t.Run("owner cancels own booking", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(pending(), nil)
		f.repo.On("CancelBooking", mock.Anything, bookingID).Return(nil)
		f.seats.On("InvalidateOccupancy", mock.Anything, scheduleID).Return()

		require.NoError(t, f.svc.CancelBooking(ctx, bookingID, owner, false))
		f.repo.AssertExpectations(t)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(pending(), nil)

		err := f.svc.CancelBooking(ctx, bookingID, uuid.New(), false)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		f.repo.AssertNotCalled(t, "CancelBooking")
	})

	t.Run("admin cancels any booking", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(pending(), nil)
		f.repo.On("CancelBooking", mock.Anything, bookingID).Return(nil)
		f.seats.On("InvalidateOccupancy", mock.Anything, scheduleID).Return()

		require.NoError(t, f.svc.CancelBooking(ctx, bookingID, uuid.New(), true))
	})

	t.Run("already cancelled booking cannot be cancelled again", func(t *testing.T) {
		f := newFixture()
		cancelled := pending()
		cancelled.Status = StatusCancelled
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(cancelled, nil)

		err := f.svc.CancelBooking(ctx, bookingID, owner, false)
		assert.ErrorIs(t, err, errs.ErrBookingNotPending)
	})
}

func TestFailBooking(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()
	scheduleID := uuid.New()

	t.Run("pending booking is cancelled and the user notified", func(t *testing.T) {
		f := newFixture()
		booking := &Booking{ID: bookingID, ScheduleID: scheduleID, Status: StatusPending}
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(booking, nil)
		f.repo.On("CancelBooking", mock.Anything, bookingID).Return(nil)
		f.seats.On("InvalidateOccupancy", mock.Anything, scheduleID).Return()
		f.notifier.On("NotifyPaymentFailed", mock.Anything, booking, "card declined").Return(nil)

		require.NoError(t, f.svc.FailBooking(ctx, bookingID, "card declined"))
		f.notifier.AssertExpectations(t)
	})

	t.Run("confirmed booking is never torn down by a late failure", func(t *testing.T) {
		f := newFixture()
		booking := &Booking{ID: bookingID, ScheduleID: scheduleID, Status: StatusConfirmed}
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(booking, nil)

		err := f.svc.FailBooking(ctx, bookingID, "late failure")
		assert.ErrorIs(t, err, errs.ErrBookingNotPending)
		f.repo.AssertNotCalled(t, "CancelBooking")
	})

	t.Run("cancelled booking is a no-op", func(t *testing.T) {
		f := newFixture()
		booking := &Booking{ID: bookingID, ScheduleID: scheduleID, Status: StatusCancelled}
		f.repo.On("GetBookingByID", mock.Anything, bookingID).Return(booking, nil)

		require.NoError(t, f.svc.FailBooking(ctx, bookingID, "duplicate signal"))
		f.repo.AssertNotCalled(t, "CancelBooking")
	})
}

func TestConfirmBooking(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()
	paymentID := uuid.New()
	scheduleID := uuid.New()

	t.Run("confirmation invalidates occupancy and notifies", func(t *testing.T) {
		f := newFixture()
		booking := &Booking{ID: bookingID, ScheduleID: scheduleID, Status: StatusConfirmed}
		f.repo.On("ConfirmBooking", mock.Anything, bookingID, paymentID).Return(nil)
		f.repo.On("GetBookingByIDWithSeats", mock.Anything, bookingID).Return(booking, nil)
		f.seats.On("InvalidateOccupancy", mock.Anything, scheduleID).Return()
		f.notifier.On("NotifyBookingConfirmed", mock.Anything, booking).Return(nil)

		require.NoError(t, f.svc.ConfirmBooking(ctx, bookingID, paymentID))
		f.notifier.AssertExpectations(t)
	})

	t.Run("seat race surfaces the repository error", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ConfirmBooking", mock.Anything, bookingID, paymentID).Return(errs.ErrSeatUnavailable)

		err := f.svc.ConfirmBooking(ctx, bookingID, paymentID)
		assert.ErrorIs(t, err, errs.ErrSeatUnavailable)
		f.notifier.AssertNotCalled(t, "NotifyBookingConfirmed")
	})
}

func TestGenerateBookingReference(t *testing.T) {
	pattern := regexp.MustCompile(`^BUS-\d{8}-[A-Z]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref, err := generateBookingReference()
		require.NoError(t, err)
		assert.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	assert.Greater(t, len(seen), 1, "references must not be constant")
}
