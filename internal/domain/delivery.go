package domain

import "time"

// Delivery - the central aggregate of the delivery workflow. It is
// created from an accepted borrow agreement and mutated only through
// the delivery service's transition operations.
type Delivery struct {
	ID                  string
	BorrowAgreementID   int64
	BorrowerID          int64
	OwnerID             int64
	AgentID             *int64
	PickupAddress       string
	DeliveryAddress     string
	Status              DeliveryStatus
	VerificationCode    string
	CodeVerifiedAt      *time.Time
	PaymentStatus       PaymentStatus
	PaymentAmount       int64
	PaymentID           *string
	TrackingNotes       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	PickupCompletedAt   *time.Time
	DeliveryCompletedAt *time.Time
}

// Assigned reports whether an agent has claimed the delivery.
func (d *Delivery) Assigned() bool {
	return d.AgentID != nil
}

// AssignedTo reports whether the given agent is the one who claimed
// the delivery.
func (d *Delivery) AssignedTo(agentID int64) bool {
	return d.AgentID != nil && *d.AgentID == agentID
}

// CodeVerified reports whether the verification code has been
// validated by the assigned agent.
func (d *Delivery) CodeVerified() bool {
	return d.CodeVerifiedAt != nil
}

// Paid reports whether the delivery fee has been captured.
func (d *Delivery) Paid() bool {
	return d.PaymentStatus == PaymentCompleted
}

// PartyTo reports whether the given user participates in the delivery
// as borrower, owner or assigned agent.
func (d *Delivery) PartyTo(userID int64) bool {
	if d.BorrowerID == userID || d.OwnerID == userID {
		return true
	}
	return d.AssignedTo(userID)
}

// CreateResult - struct representing the result of creating a delivery.
// VerificationCode is surfaced exactly once, to the borrower.
type CreateResult struct {
	Delivery         Delivery
	VerificationCode string
}

// PaymentResult - struct representing the result of paying for a delivery.
type PaymentResult struct {
	Delivery  Delivery
	PaymentID string
	Amount    int64
	Method    string
	PaidAt    time.Time
}
