//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery_test

package delivery

import (
	"context"

	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/gateway/payment"
	"bookbridge-delivery/internal/ports/deliverytx"
)

type deliveryRepository interface {
	WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	ListAvailable(ctx context.Context, requirePaid bool) ([]domain.Delivery, error)
}

type agreementsGateway interface {
	Get(ctx context.Context, id int64) (*domain.BorrowAgreement, error)
}

type usersGateway interface {
	DisplayName(ctx context.Context, id int64) (string, error)
}

type paymentGateway interface {
	Capture(ctx context.Context, deliveryID, method string, amount int64) (payment.Receipt, error)
}

// CodeGenerator produces verification codes for new deliveries.
type CodeGenerator interface {
	Generate() string
}

type counter interface {
	Inc()
}
