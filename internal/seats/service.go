package seats

import (
	"context"
	"fmt"
	"time"

	"busly/pkg/cache"
	"busly/pkg/logger"

	"github.com/google/uuid"
)

const occupancyKeyPrefix = "busly:occupancy:"

type Service interface {
	GenerateSeats(ctx context.Context, scheduleID uuid.UUID, labels []string) error
	GetSeat(ctx context.Context, seatID uuid.UUID) (*Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	GetOccupancy(ctx context.Context, scheduleID uuid.UUID) (*OccupancyResponse, error)

	ClaimSeats(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) error
	ReleaseBooking(ctx context.Context, scheduleID, bookingID uuid.UUID) (int64, error)
	InvalidateOccupancy(ctx context.Context, scheduleID uuid.UUID)

	CheckInPassenger(ctx context.Context, scheduleID, seatID uuid.UUID) error
	CheckOutPassenger(ctx context.Context, scheduleID, seatID uuid.UUID) error
	UpdateNote(ctx context.Context, seatID uuid.UUID, note string) error
}

type service struct {
	repo         Repository
	cache        cache.Service
	occupancyTTL time.Duration
	logger       *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, occupancyTTL time.Duration) Service {
	return &service{
		repo:         repo,
		cache:        cacheService,
		occupancyTTL: occupancyTTL,
		logger:       logger.GetDefault(),
	}
}

func (s *service) GenerateSeats(ctx context.Context, scheduleID uuid.UUID, labels []string) error {
	seats := make([]Seat, 0, len(labels))
	for _, label := range labels {
		seats = append(seats, Seat{
			ScheduleID: scheduleID,
			Label:      label,
		})
	}
	return s.repo.CreateSeats(ctx, seats)
}

func (s *service) GetSeat(ctx context.Context, seatID uuid.UUID) (*Seat, error) {
	return s.repo.GetSeatByID(ctx, seatID)
}

func (s *service) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	return s.repo.GetSeatsByIDs(ctx, seatIDs)
}

// GetOccupancy returns the seat map for one schedule, served cache-aside
// with a short TTL. The cache is invalidated on every claim and release,
// so the TTL only bounds staleness after a missed invalidation.
func (s *service) GetOccupancy(ctx context.Context, scheduleID uuid.UUID) (*OccupancyResponse, error) {
	var occupancy OccupancyResponse

	key := occupancyKey(scheduleID)
	err := s.cache.GetOrSet(ctx, key, s.occupancyTTL, func() (interface{}, error) {
		return s.buildOccupancy(ctx, scheduleID)
	}, &occupancy)
	if err != nil {
		// Serve from the database when the cache is down
		fresh, dbErr := s.buildOccupancy(ctx, scheduleID)
		if dbErr != nil {
			return nil, dbErr
		}
		return fresh, nil
	}

	return &occupancy, nil
}

func (s *service) buildOccupancy(ctx context.Context, scheduleID uuid.UUID) (*OccupancyResponse, error) {
	seats, err := s.repo.GetSeatsBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	resp := &OccupancyResponse{
		ScheduleID: scheduleID.String(),
		Total:      len(seats),
		Seats:      make([]SeatResponse, 0, len(seats)),
	}
	for i := range seats {
		if seats[i].Claimed {
			resp.Claimed++
		}
		resp.Seats = append(resp.Seats, seats[i].ToResponse())
	}
	resp.Available = resp.Total - resp.Claimed

	return resp, nil
}

func (s *service) ClaimSeats(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID, bookingID uuid.UUID) error {
	if err := s.repo.ClaimSeats(ctx, seatIDs, bookingID); err != nil {
		return err
	}
	s.InvalidateOccupancy(ctx, scheduleID)
	return nil
}

func (s *service) ReleaseBooking(ctx context.Context, scheduleID, bookingID uuid.UUID) (int64, error) {
	released, err := s.repo.ReleaseByBooking(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		s.InvalidateOccupancy(ctx, scheduleID)
	}
	return released, nil
}

func (s *service) InvalidateOccupancy(ctx context.Context, scheduleID uuid.UUID) {
	if err := s.cache.Delete(ctx, occupancyKey(scheduleID)); err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to invalidate occupancy cache", err, map[string]interface{}{
			"schedule_id": scheduleID.String(),
		})
	}
}

func (s *service) CheckInPassenger(ctx context.Context, scheduleID, seatID uuid.UUID) error {
	if err := s.repo.CheckIn(ctx, seatID); err != nil {
		return err
	}
	s.InvalidateOccupancy(ctx, scheduleID)
	return nil
}

func (s *service) CheckOutPassenger(ctx context.Context, scheduleID, seatID uuid.UUID) error {
	if err := s.repo.CheckOut(ctx, seatID); err != nil {
		return err
	}
	s.InvalidateOccupancy(ctx, scheduleID)
	return nil
}

func (s *service) UpdateNote(ctx context.Context, seatID uuid.UUID, note string) error {
	return s.repo.UpdateSeatNote(ctx, seatID, note)
}

func occupancyKey(scheduleID uuid.UUID) string {
	return fmt.Sprintf("%s%s", occupancyKeyPrefix, scheduleID.String())
}
