package payments

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Payment tracks one attempt to collect money for a booking. ProviderTxID
// is the provider-side transaction reference; callbacks are matched on it,
// so it is unique.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PayerID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"payer_id"`
	Amount        int64      `gorm:"not null" json:"amount"`
	Currency      string     `gorm:"type:varchar(3);default:'VND'" json:"currency"`
	Provider      string     `gorm:"type:varchar(20);not null;check:provider IN ('vnpay', 'momo', 'zalopay')" json:"provider"`
	ProviderTxID  *string    `gorm:"uniqueIndex" json:"provider_tx_id,omitempty"`
	Status        Status     `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED');default:'PENDING'" json:"status"`
	RelatedID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"related_id"`
	RelatedType   string     `gorm:"type:varchar(20);default:'booking'" json:"related_type"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

func (p *Payment) IsSettled() bool {
	return p.Status != StatusPending
}

// PaymentResponse for API responses
type PaymentResponse struct {
	ID            string     `json:"id"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Provider      string     `json:"provider"`
	ProviderTxID  string     `json:"provider_tx_id,omitempty"`
	Status        Status     `json:"status"`
	BookingID     string     `json:"booking_id"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.String(),
		Amount:        p.Amount,
		Currency:      p.Currency,
		Provider:      p.Provider,
		Status:        p.Status,
		BookingID:     p.RelatedID.String(),
		FailureReason: p.FailureReason,
		ProcessedAt:   p.ProcessedAt,
		CreatedAt:     p.CreatedAt,
	}
	if p.ProviderTxID != nil {
		resp.ProviderTxID = *p.ProviderTxID
	}
	return resp
}
