package handlers

import (
	"context"

	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/service/delivery"
	"bookbridge-delivery/internal/service/payments"
	"bookbridge-delivery/internal/tracking"
)

type deliveryUsecase interface {
	Create(ctx context.Context, agreementID, requesterID int64, pickupAddress, deliveryAddress string) (domain.CreateResult, error)
	Assign(ctx context.Context, deliveryID string, agentID int64) (domain.Delivery, error)
	Pay(ctx context.Context, deliveryID string, payerID int64, method string) (domain.PaymentResult, error)
	Verify(ctx context.Context, deliveryID string, agentID int64, submittedCode string) (domain.Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID string, agentID int64, newStatus domain.DeliveryStatus, notes string) (domain.Delivery, error)
	Cancel(ctx context.Context, deliveryID string, actorID int64) (domain.Delivery, error)
	Track(ctx context.Context, deliveryID string, viewerID int64) (tracking.View, error)
	ListAvailable(ctx context.Context) ([]domain.Delivery, error)
}

// NewDeliveryUsecase wires a delivery.Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}

type paymentEventProcessor interface {
	Handle(ctx context.Context, e payments.Event) error
}

// NewPaymentEventProcessor wires a payments.Processor into the webhook handler.
func NewPaymentEventProcessor(p *payments.Processor) paymentEventProcessor {
	return p
}
