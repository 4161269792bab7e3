package seats

import "time"

// SeatResponse for API responses
type SeatResponse struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Claimed   bool       `json:"claimed"`
	ClaimedBy string     `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	Note      string     `json:"note,omitempty"`
}

// OccupancyResponse is the seat map for one schedule
type OccupancyResponse struct {
	ScheduleID string         `json:"schedule_id"`
	Total      int            `json:"total"`
	Claimed    int            `json:"claimed"`
	Available  int            `json:"available"`
	Seats      []SeatResponse `json:"seats"`
}
