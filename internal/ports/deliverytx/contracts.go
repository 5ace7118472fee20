package deliverytx

import (
	"context"

	"bookbridge-delivery/internal/domain"
)

// Repository is the per-transaction view of the delivery store. All
// read-check-write sequences against a delivery row go through it so
// the invariants hold under concurrent callers.
type Repository interface {
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Delivery, error)
	GetByAgreementID(ctx context.Context, agreementID int64) (*domain.Delivery, error)
	Insert(ctx context.Context, d *domain.Delivery) error
	Claim(ctx context.Context, id string, agentID int64) (bool, error)
	Update(ctx context.Context, d *domain.Delivery) error
	MarkPaymentEventProcessed(ctx context.Context, eventID string) (bool, error)
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
