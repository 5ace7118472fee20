package notify

import (
	"context"
	"time"
)

// Kind identifies a notification template on the consuming side.
type Kind string

// Notification kinds emitted by the delivery workflow
const (
	KindDeliveryAssigned  Kind = "delivery-assigned"
	KindDeliveryPickedUp  Kind = "delivery-picked-up"
	KindDeliveryDelivered Kind = "delivery-delivered"
)

// Payload carries the delivery context a notification renders from.
type Payload struct {
	DeliveryID string `json:"delivery_id"`
	BookTitle  string `json:"book_title,omitempty"`
	AgentName  string `json:"agent_name,omitempty"`
}

// Message is the envelope published to the notifications topic.
type Message struct {
	UserID  int64     `json:"user_id"`
	Kind    Kind      `json:"kind"`
	Payload Payload   `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// Dispatcher delivers notifications to users. Dispatch is best-effort:
// implementations log failures and never return them, so a failed
// notification cannot roll back or delay a committed transition.
type Dispatcher interface {
	Notify(ctx context.Context, userID int64, kind Kind, payload Payload)
}
