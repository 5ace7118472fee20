package handlers

import (
	"errors"
	"net/http"

	"bookbridge-delivery/internal/apperr"
	"bookbridge-delivery/internal/domain"
	"bookbridge-delivery/internal/gateway/payment"
	"bookbridge-delivery/internal/logx"
)

// DeliveryHandler serves HTTP endpoints for delivery resources.
type DeliveryHandler struct {
	usecase deliveryUsecase
	logger  logx.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(logger logx.Logger, uc deliveryUsecase) *DeliveryHandler {
	return &DeliveryHandler{usecase: uc, logger: logger}
}

// Create handles POST /deliveries.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.Create(r.Context(), req.BorrowAgreementID, userID, req.PickupAddress, req.DeliveryAddress)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, createResultToResponse(res))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "agreement not found")
	case errors.Is(err, apperr.ErrInvalidState):
		writeError(h.logger, w, r, http.StatusConflict, "agreement not accepted")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "only the borrower may request delivery")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "delivery already exists for agreement")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Available handles GET /deliveries/available.
func (h *DeliveryHandler) Available(w http.ResponseWriter, r *http.Request) {
	if _, err := userIDFromHeader(r); err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.usecase.ListAvailable(r.Context())
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, modelsToResponse(list))
}

// Assign handles POST /deliveries/{id}/assign.
func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := deliveryIDFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.usecase.Assign(r.Context(), id, userID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, modelToResponse(d))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrPaymentRequired):
		writeError(h.logger, w, r, http.StatusPaymentRequired, "delivery fee not paid")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "delivery already claimed")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Pay handles POST /deliveries/{id}/pay.
func (h *DeliveryHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := deliveryIDFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req payDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.Pay(r.Context(), id, userID, req.Method)
	var gatewayErr *payment.GatewayError
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, payResultToResponse(res))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "only the borrower may pay")
	case errors.Is(err, apperr.ErrAlreadyPaid):
		writeError(h.logger, w, r, http.StatusConflict, "already paid")
	case errors.Is(err, apperr.ErrVerificationRequired):
		writeError(h.logger, w, r, http.StatusConflict, "verification code not validated")
	case errors.As(err, &gatewayErr) && !gatewayErr.Transient:
		writeError(h.logger, w, r, http.StatusPaymentRequired, "payment declined")
	case errors.As(err, &gatewayErr):
		writeError(h.logger, w, r, http.StatusBadGateway, "payment gateway unavailable")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Verify handles POST /deliveries/{id}/verify.
func (h *DeliveryHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := deliveryIDFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req verifyDeliveryRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.Verify(r.Context(), id, userID, req.Code)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, modelToResponse(d))
	case errors.Is(err, apperr.ErrInvalidCode):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid verification code")
	case errors.Is(err, apperr.ErrTooManyAttempts):
		writeError(h.logger, w, r, http.StatusTooManyRequests, "too many verification attempts")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "only the assigned agent may verify")
	case errors.Is(err, apperr.ErrAlreadyVerified):
		writeError(h.logger, w, r, http.StatusConflict, "code already validated")
	case errors.Is(err, apperr.ErrPaymentRequired):
		writeError(h.logger, w, r, http.StatusPaymentRequired, "delivery fee not paid")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// UpdateStatus handles PATCH /deliveries/{id}/status.
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := deliveryIDFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.UpdateStatus(r.Context(), id, userID, domain.DeliveryStatus(req.Status), req.Notes)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, modelToResponse(d))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "unknown status")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "only the assigned agent may update status")
	case errors.Is(err, apperr.ErrPaymentRequired):
		writeError(h.logger, w, r, http.StatusPaymentRequired, "delivery fee not paid")
	case errors.Is(err, apperr.ErrVerificationRequired):
		writeError(h.logger, w, r, http.StatusConflict, "verification code not validated")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "invalid status transition")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Cancel handles POST /deliveries/{id}/cancel.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := deliveryIDFromURL(r)
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	d, err := h.usecase.Cancel(r.Context(), id, userID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, modelToResponse(d))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "not a party to this delivery")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(h.logger, w, r, http.StatusConflict, "delivery can no longer be cancelled")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
