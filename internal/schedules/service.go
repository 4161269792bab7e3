package schedules

import (
	"context"
	"fmt"
	"math"

	"busly/internal/seats"
	"busly/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*ScheduleResponse, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, req *UpdateScheduleRequest) (*ScheduleResponse, error)
	ListSchedules(ctx context.Context, query ScheduleListQuery) (*PaginatedSchedules, error)
	GetUpcoming(ctx context.Context, limit int) ([]ScheduleResponse, error)
}

type service struct {
	repo        Repository
	seatService seats.Service
	logger      *logger.Logger
}

func NewService(repo Repository, seatService seats.Service) Service {
	return &service{
		repo:        repo,
		seatService: seatService,
		logger:      logger.GetDefault(),
	}
}

// CreateSchedule persists the departure and generates one seat row per
// position on the bus. Labels run 1A..NB in a 2+2 layout.
func (s *service) CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*ScheduleResponse, error) {
	schedule := &Schedule{
		RouteName:    req.RouteName,
		Origin:       req.Origin,
		Destination:  req.Destination,
		BusPlate:     req.BusPlate,
		DepartureAt:  req.DepartureAt,
		ArrivalAt:    req.ArrivalAt,
		PricePerSeat: req.PricePerSeat,
		SeatCount:    req.SeatCount,
		Status:       StatusScheduled,
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, err
	}

	if err := s.seatService.GenerateSeats(ctx, schedule.ID, GenerateSeatLabels(req.SeatCount)); err != nil {
		return nil, fmt.Errorf("schedule created but seat generation failed: %w", err)
	}

	resp := schedule.ToResponse()
	return &resp, nil
}

func (s *service) GetSchedule(ctx context.Context, id uuid.UUID) (*ScheduleResponse, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := schedule.ToResponse()
	return &resp, nil
}

func (s *service) UpdateSchedule(ctx context.Context, id uuid.UUID, req *UpdateScheduleRequest) (*ScheduleResponse, error) {
	updates := make(map[string]interface{})

	if req.RouteName != nil {
		updates["route_name"] = *req.RouteName
	}
	if req.Origin != nil {
		updates["origin"] = *req.Origin
	}
	if req.Destination != nil {
		updates["destination"] = *req.Destination
	}
	if req.BusPlate != nil {
		updates["bus_plate"] = *req.BusPlate
	}
	if req.DepartureAt != nil {
		updates["departure_at"] = *req.DepartureAt
	}
	if req.ArrivalAt != nil {
		updates["arrival_at"] = *req.ArrivalAt
	}
	if req.PricePerSeat != nil {
		updates["price_per_seat"] = *req.PricePerSeat
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	schedule, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	resp := schedule.ToResponse()
	return &resp, nil
}

func (s *service) ListSchedules(ctx context.Context, query ScheduleListQuery) (*PaginatedSchedules, error) {
	schedules, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	responses := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, schedules[i].ToResponse())
	}

	return &PaginatedSchedules{
		Schedules:  responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}, nil
}

func (s *service) GetUpcoming(ctx context.Context, limit int) ([]ScheduleResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	schedules, err := s.repo.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, schedules[i].ToResponse())
	}
	return responses, nil
}

// GenerateSeatLabels produces row-number plus seat-letter labels for a
// 2+2 coach layout: 1A 1B 1C 1D 2A ...
func GenerateSeatLabels(count int) []string {
	letters := []string{"A", "B", "C", "D"}
	labels := make([]string, 0, count)
	for i := 0; i < count; i++ {
		row := i/len(letters) + 1
		labels = append(labels, fmt.Sprintf("%d%s", row, letters[i%len(letters)]))
	}
	return labels
}
