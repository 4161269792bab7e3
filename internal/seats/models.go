package seats

import (
	"time"

	"github.com/google/uuid"
)

// Seat is one physical seat on one departure. A seat belongs to exactly
// one schedule; the (schedule, label) pair is unique.
type Seat struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScheduleID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_schedule_seat" json:"schedule_id"`
	Label      string     `gorm:"not null;uniqueIndex:idx_schedule_seat" json:"label"`
	Claimed    bool       `gorm:"not null;default:false" json:"claimed"`
	ClaimedBy  *uuid.UUID `gorm:"type:uuid;index" json:"claimed_by,omitempty"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
	CheckInAt  *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
	Note       string     `gorm:"size:500" json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsAvailable() bool {
	return !s.Claimed
}

func (s *Seat) IsCheckedIn() bool {
	return s.CheckInAt != nil && s.CheckOutAt == nil
}

// Convert Seat to SeatResponse
func (s *Seat) ToResponse() SeatResponse {
	resp := SeatResponse{
		ID:        s.ID.String(),
		Label:     s.Label,
		Claimed:   s.Claimed,
		ClaimedAt: s.ClaimedAt,
		Note:      s.Note,
	}
	if s.ClaimedBy != nil {
		resp.ClaimedBy = s.ClaimedBy.String()
	}
	return resp
}
