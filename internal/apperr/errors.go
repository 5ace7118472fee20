package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the actor is not allowed to perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a uniqueness or claim conflict.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a collaborator record is not in the
// state the operation requires (e.g. borrow agreement not accepted).
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidTransition is returned when the requested status is not a
// valid successor of the delivery's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPaymentRequired is returned when the delivery fee has not been paid yet.
var ErrPaymentRequired = errors.New("payment required")

// ErrVerificationRequired is returned when the verification code has
// not been validated yet.
var ErrVerificationRequired = errors.New("verification code not validated")

// ErrAlreadyVerified is returned on a repeated verify after success.
var ErrAlreadyVerified = errors.New("verification code already validated")

// ErrAlreadyPaid is returned when payment is already completed.
var ErrAlreadyPaid = errors.New("payment already completed")

// ErrInvalidCode is returned when the submitted verification code does
// not match the stored one.
var ErrInvalidCode = errors.New("invalid verification code")

// ErrTooManyAttempts is returned when the per-delivery verification
// attempt limit is exhausted.
var ErrTooManyAttempts = errors.New("too many verification attempts")
