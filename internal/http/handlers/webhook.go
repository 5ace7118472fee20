package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"bookbridge-delivery/internal/gateway/payment"
	"bookbridge-delivery/internal/logx"
)

const signatureHeader = "X-Payment-Signature"

// WebhookHandler receives payment processor callbacks. The signature is
// computed over the raw body, so the body must be read before any JSON
// decoding touches it.
type WebhookHandler struct {
	processor paymentEventProcessor
	secret    string
	rejected  interface{ Inc() }
	logger    logx.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(logger logx.Logger, processor paymentEventProcessor, secret string, rejected interface{ Inc() }) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    secret,
		rejected:  rejected,
		logger:    logger,
	}
}

// Receive handles POST /webhooks/payments.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, bodyLimit))
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "unreadable body")
		return
	}

	if !payment.VerifySignature(body, r.Header.Get(signatureHeader), h.secret) {
		if h.rejected != nil {
			h.rejected.Inc()
		}
		h.logger.Warn("webhook signature rejected",
			logx.String("req_id", reqID(r.Context())),
		)
		writeError(h.logger, w, r, http.StatusUnauthorized, "invalid signature")
		return
	}

	var req webhookEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.processor.Handle(r.Context(), webhookToEvent(req)); err != nil {
		// 5xx makes the processor redeliver; dedup absorbs the repeat
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(h.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}
