package handlers

import (
	"errors"
	"net/http"

	"bookbridge-delivery/internal/apperr"
)

// Track handles GET /deliveries/{id}/tracking. The response is the
// redacted tracking view, available only to parties of the delivery.
func (h *DeliveryHandler) Track(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.usecase.Track(r.Context(), id, userID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, view)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "not a party to this delivery")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
