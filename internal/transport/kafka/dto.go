package kafka

import (
	"strings"
	"time"

	"bookbridge-delivery/internal/service/payments"
)

// EventDTO is a data transfer object for payments.Event
type EventDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OrderRef  string    `json:"order_ref"`
	PaymentID string    `json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to payments.Event
func ToDomain(dto EventDTO) payments.Event {
	return payments.Event{
		ID:        strings.TrimSpace(dto.ID),
		Type:      strings.TrimSpace(dto.Type),
		OrderRef:  strings.TrimSpace(dto.OrderRef),
		PaymentID: strings.TrimSpace(dto.PaymentID),
		CreatedAt: dto.CreatedAt,
	}
}
