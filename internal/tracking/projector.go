package tracking

import (
	"time"

	"bookbridge-delivery/internal/domain"
)

// Meta carries the display attributes of the delivery's participants
// and book, resolved by the caller from the agreements collaborator.
type Meta struct {
	BookTitle    string
	BookAuthor   string
	BorrowerName string
	OwnerName    string
	AgentName    string
}

// View is the redacted, read-facing projection of a delivery. It never
// carries the verification code, the processor payment reference or
// anyone's email.
type View struct {
	ID                  string                `json:"id"`
	Status              domain.DeliveryStatus `json:"status"`
	PickupAddress       string                `json:"pickup_address"`
	DeliveryAddress     string                `json:"delivery_address"`
	PaymentStatus       domain.PaymentStatus  `json:"payment_status"`
	PaymentAmount       int64                 `json:"payment_amount"`
	CodeVerifiedAt      *time.Time            `json:"code_verified_at,omitempty"`
	TrackingNotes       string                `json:"tracking_notes,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	PickupCompletedAt   *time.Time            `json:"pickup_completed_at,omitempty"`
	DeliveryCompletedAt *time.Time            `json:"delivery_completed_at,omitempty"`
	AgentName           string                `json:"agent_name,omitempty"`
	BookTitle           string                `json:"book_title"`
	BookAuthor          string                `json:"book_author"`
	BorrowerName        string                `json:"borrower_name"`
	OwnerName           string                `json:"owner_name"`
}

// Project derives the tracking view of a delivery. Pure transform, no
// side effects.
func Project(d domain.Delivery, meta Meta) View {
	v := View{
		ID:                  d.ID,
		Status:              d.Status,
		PickupAddress:       d.PickupAddress,
		DeliveryAddress:     d.DeliveryAddress,
		PaymentStatus:       d.PaymentStatus,
		PaymentAmount:       d.PaymentAmount,
		CodeVerifiedAt:      d.CodeVerifiedAt,
		TrackingNotes:       d.TrackingNotes,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		PickupCompletedAt:   d.PickupCompletedAt,
		DeliveryCompletedAt: d.DeliveryCompletedAt,
		BookTitle:           meta.BookTitle,
		BookAuthor:          meta.BookAuthor,
		BorrowerName:        meta.BorrowerName,
		OwnerName:           meta.OwnerName,
	}
	if d.Assigned() {
		v.AgentName = meta.AgentName
	}
	return v
}
