package payments

import (
	"context"

	"bookbridge-delivery/internal/ports/deliverytx"
)

// TxRunner opens a transaction and runs fn inside it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error
}
