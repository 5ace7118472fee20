package delivery

// OrderingPolicy selects which gate comes first in the workflow:
// whether payment must be completed before the verification code may
// be validated, or the other way around.
type OrderingPolicy string

// Supported ordering policies
const (
	// PaymentFirst requires the fee to be captured before verify is
	// allowed. This is the default contract.
	PaymentFirst OrderingPolicy = "payment-first"
	// VerificationFirst requires the code to be validated before pay
	// is allowed.
	VerificationFirst OrderingPolicy = "verification-first"
)

// Policy bundles the delivery workflow policy knobs.
type Policy struct {
	Ordering  OrderingPolicy
	FeeAmount int64 // flat fee in minor currency units
}

// NewPolicy normalizes a Policy, applying defaults for zero values.
func NewPolicy(ordering OrderingPolicy, feeAmount int64) Policy {
	if ordering != PaymentFirst && ordering != VerificationFirst {
		ordering = PaymentFirst
	}
	if feeAmount <= 0 {
		feeAmount = 5000
	}
	return Policy{Ordering: ordering, FeeAmount: feeAmount}
}
