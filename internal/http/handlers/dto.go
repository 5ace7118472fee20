package handlers

import (
	"time"

	"bookbridge-delivery/internal/domain"
)

type createDeliveryRequest struct {
	BorrowAgreementID int64  `json:"borrow_agreement_id"`
	PickupAddress     string `json:"pickup_address"`
	DeliveryAddress   string `json:"delivery_address"`
}

type payDeliveryRequest struct {
	Method string `json:"method"`
}

type verifyDeliveryRequest struct {
	Code string `json:"code"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type deliveryDTO struct {
	ID                  string                `json:"id"`
	BorrowAgreementID   int64                 `json:"borrow_agreement_id"`
	BorrowerID          int64                 `json:"borrower_id"`
	OwnerID             int64                 `json:"owner_id"`
	AgentID             *int64                `json:"agent_id,omitempty"`
	PickupAddress       string                `json:"pickup_address"`
	DeliveryAddress     string                `json:"delivery_address"`
	Status              domain.DeliveryStatus `json:"status"`
	PaymentStatus       domain.PaymentStatus  `json:"payment_status"`
	PaymentAmount       int64                 `json:"payment_amount"`
	TrackingNotes       string                `json:"tracking_notes,omitempty"`
	CodeVerified        bool                  `json:"code_verified"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	PickupCompletedAt   *time.Time            `json:"pickup_completed_at,omitempty"`
	DeliveryCompletedAt *time.Time            `json:"delivery_completed_at,omitempty"`
}

type createDeliveryResponse struct {
	Delivery         deliveryDTO `json:"delivery"`
	VerificationCode string      `json:"verification_code"`
}

type payDeliveryResponse struct {
	Delivery  deliveryDTO `json:"delivery"`
	PaymentID string      `json:"payment_id"`
	Amount    int64       `json:"amount"`
	Method    string      `json:"method"`
	PaidAt    time.Time   `json:"paid_at"`
}

type webhookEventRequest struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OrderRef  string    `json:"order_ref"`
	PaymentID string    `json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}
