package payments

import (
	"time"
)

// Event types emitted by the payment processor.
const (
	TypeCaptured = "payment.captured"
	TypeFailed   = "payment.failed"
)

// Event is a single payment event. OrderRef carries the delivery ID the
// capture was opened with.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OrderRef  string    `json:"order_ref"`
	PaymentID string    `json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}
