package schedules

import "time"

type CreateScheduleRequest struct {
	RouteName    string    `json:"route_name" binding:"required,min=3,max=255"`
	Origin       string    `json:"origin" binding:"required,min=2,max=255"`
	Destination  string    `json:"destination" binding:"required,min=2,max=255"`
	BusPlate     string    `json:"bus_plate" binding:"required,max=20"`
	DepartureAt  time.Time `json:"departure_at" binding:"required"`
	ArrivalAt    time.Time `json:"arrival_at" binding:"required"`
	PricePerSeat int64     `json:"price_per_seat" binding:"required,min=0"`
	SeatCount    int       `json:"seat_count" binding:"required,min=1,max=100"`
}

type UpdateScheduleRequest struct {
	RouteName    *string    `json:"route_name" binding:"omitempty,min=3,max=255"`
	Origin       *string    `json:"origin" binding:"omitempty,min=2,max=255"`
	Destination  *string    `json:"destination" binding:"omitempty,min=2,max=255"`
	BusPlate     *string    `json:"bus_plate" binding:"omitempty,max=20"`
	DepartureAt  *time.Time `json:"departure_at"`
	ArrivalAt    *time.Time `json:"arrival_at"`
	PricePerSeat *int64     `json:"price_per_seat" binding:"omitempty,min=0"`
	Status       *string    `json:"status" binding:"omitempty,oneof=SCHEDULED DEPARTED CANCELLED"`
}

type ScheduleListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Origin   string `form:"origin"`
	Dest     string `form:"destination"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status" binding:"omitempty,oneof=SCHEDULED DEPARTED CANCELLED"`
}
