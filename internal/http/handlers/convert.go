package handlers

import (
	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/service/payments"
)

// modelToResponse never exposes the verification code: it travels only
// in the create response, once, to the borrower.
func modelToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:                  d.ID,
		BorrowAgreementID:   d.BorrowAgreementID,
		BorrowerID:          d.BorrowerID,
		OwnerID:             d.OwnerID,
		AgentID:             d.AgentID,
		PickupAddress:       d.PickupAddress,
		DeliveryAddress:     d.DeliveryAddress,
		Status:              d.Status,
		PaymentStatus:       d.PaymentStatus,
		PaymentAmount:       d.PaymentAmount,
		TrackingNotes:       d.TrackingNotes,
		CodeVerified:        d.CodeVerified(),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		PickupCompletedAt:   d.PickupCompletedAt,
		DeliveryCompletedAt: d.DeliveryCompletedAt,
	}
}

func modelsToResponse(list []domain.Delivery) []deliveryDTO {
	out := make([]deliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, modelToResponse(d))
	}
	return out
}

func createResultToResponse(res domain.CreateResult) createDeliveryResponse {
	return createDeliveryResponse{
		Delivery:         modelToResponse(res.Delivery),
		VerificationCode: res.VerificationCode,
	}
}

func payResultToResponse(res domain.PaymentResult) payDeliveryResponse {
	return payDeliveryResponse{
		Delivery:  modelToResponse(res.Delivery),
		PaymentID: res.PaymentID,
		Amount:    res.Amount,
		Method:    res.Method,
		PaidAt:    res.PaidAt,
	}
}

func webhookToEvent(req webhookEventRequest) payments.Event {
	return payments.Event{
		ID:        req.ID,
		Type:      req.Type,
		OrderRef:  req.OrderRef,
		PaymentID: req.PaymentID,
		CreatedAt: req.CreatedAt,
	}
}
