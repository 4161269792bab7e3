package schedules

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is one departure of one bus on one route.
type Schedule struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RouteName    string    `gorm:"not null;size:255" json:"route_name"`
	Origin       string    `gorm:"not null;size:255" json:"origin"`
	Destination  string    `gorm:"not null;size:255" json:"destination"`
	BusPlate     string    `gorm:"not null;size:20" json:"bus_plate"`
	DepartureAt  time.Time `gorm:"not null;index" json:"departure_at"`
	ArrivalAt    time.Time `gorm:"not null" json:"arrival_at"`
	PricePerSeat int64     `gorm:"not null;check:price_per_seat >= 0" json:"price_per_seat"`
	SeatCount    int       `gorm:"not null;check:seat_count > 0" json:"seat_count"`
	Status       Status    `gorm:"type:varchar(20);default:'SCHEDULED'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Schedule) TableName() string {
	return "schedules"
}

func (s *Schedule) IsBookable() bool {
	return s.Status == StatusScheduled && time.Now().Before(s.DepartureAt)
}

// Helper method to convert Schedule to ScheduleResponse
func (s *Schedule) ToResponse() ScheduleResponse {
	return ScheduleResponse{
		ID:           s.ID.String(),
		RouteName:    s.RouteName,
		Origin:       s.Origin,
		Destination:  s.Destination,
		BusPlate:     s.BusPlate,
		DepartureAt:  s.DepartureAt,
		ArrivalAt:    s.ArrivalAt,
		PricePerSeat: s.PricePerSeat,
		SeatCount:    s.SeatCount,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
