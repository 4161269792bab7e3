package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed NotificationType = "booking_confirmation"
	NotificationTypePaymentFailed    NotificationType = "payment_failed"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusQueued  NotificationStatus = "queued"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is the message that travels over the broker to the email
// workers. Data carries template fields; BookingRef doubles as the QR
// payload on confirmation tickets.
type Notification struct {
	ID             uuid.UUID              `json:"id"`
	Type           NotificationType       `json:"type"`
	RecipientID    uuid.UUID              `json:"recipient_id"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name"`
	Subject        string                 `json:"subject"`
	BookingID      *uuid.UUID             `json:"booking_id,omitempty"`
	BookingRef     string                 `json:"booking_ref,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	Status         NotificationStatus     `json:"status"`
	LastError      *string                `json:"last_error,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func NewNotification(nType NotificationType, recipientID uuid.UUID, email, name string) *Notification {
	now := time.Now()
	return &Notification{
		ID:             uuid.New(),
		Type:           nType,
		RecipientID:    recipientID,
		RecipientEmail: email,
		RecipientName:  name,
		Data:           make(map[string]interface{}),
		Status:         NotificationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func FromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetPartitionKey keys messages per recipient so one user's emails stay
// ordered.
func (n *Notification) GetPartitionKey() string {
	return n.RecipientID.String()
}
