package domain

type (
	// DeliveryStatus represents the lifecycle status of a delivery.
	DeliveryStatus string
	// PaymentStatus represents the payment state of a delivery fee.
	PaymentStatus string
)

// List of possible delivery statuses
const (
	StatusPending   DeliveryStatus = "PENDING"
	StatusAssigned  DeliveryStatus = "ASSIGNED"
	StatusPickedUp  DeliveryStatus = "PICKED_UP"
	StatusInTransit DeliveryStatus = "IN_TRANSIT"
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusCompleted DeliveryStatus = "COMPLETED"
	StatusCancelled DeliveryStatus = "CANCELLED"
)

// List of possible payment statuses
const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

var allowedStatuses = [...]DeliveryStatus{
	StatusPending, StatusAssigned, StatusPickedUp,
	StatusInTransit, StatusDelivered, StatusCompleted, StatusCancelled,
}

var allowedPaymentStatuses = [...]PaymentStatus{
	PaymentPending, PaymentCompleted, PaymentFailed,
}

// transitions holds the allowed forward edges of the status graph.
// Cancellation is handled separately and is not an agent transition.
var transitions = map[DeliveryStatus]DeliveryStatus{
	StatusAssigned:  StatusPickedUp,
	StatusPickedUp:  StatusInTransit,
	StatusInTransit: StatusDelivered,
	StatusDelivered: StatusCompleted,
}

// Valid checks if the DeliveryStatus is a member of the closed set.
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the PaymentStatus is a member of the closed set.
func (s PaymentStatus) Valid() bool {
	for _, v := range allowedPaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is the allowed successor of s.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	allowed, ok := transitions[s]
	return ok && allowed == next
}

// Terminal reports whether the status ends the delivery lifecycle.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// RequiresVerifiedCode reports whether entering the status requires the
// verification code gate to have been satisfied first.
func (s DeliveryStatus) RequiresVerifiedCode() bool {
	return s == StatusPickedUp || s == StatusInTransit
}

// Cancellable reports whether the delivery can still be cancelled from
// this status. Custody transfer closes the cancellation window.
func (s DeliveryStatus) Cancellable() bool {
	return s == StatusPending || s == StatusAssigned
}
