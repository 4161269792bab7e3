package schedules

import "time"

type ScheduleResponse struct {
	ID           string    `json:"id"`
	RouteName    string    `json:"route_name"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	BusPlate     string    `json:"bus_plate"`
	DepartureAt  time.Time `json:"departure_at"`
	ArrivalAt    time.Time `json:"arrival_at"`
	PricePerSeat int64     `json:"price_per_seat"`
	SeatCount    int       `json:"seat_count"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PaginatedSchedules struct {
	Schedules  []ScheduleResponse `json:"schedules"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
