package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bookbridge-delivery/internal/logx"
)

// Receipt is the processor's record of a captured payment.
type Receipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GatewayError reports a failed capture. Transient errors (timeouts,
// processor unavailability) leave the payment outcome unknown and are
// safe to retry; non-transient errors are explicit declines.
type GatewayError struct {
	Transient bool
	Code      string
	Message   string
}

func (e *GatewayError) Error() string {
	kind := "declined"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("payment gateway: %s: %s (%s)", kind, e.Message, e.Code)
}

// IsTransient reports whether err is a retryable gateway error.
func IsTransient(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Transient
	}
	// network errors, context timeouts: outcome unknown, assume retryable
	return true
}

type captureRequest struct {
	OrderRef string `json:"order_ref"`
	Method   string `json:"method"`
	Amount   int64  `json:"amount"`
}

type captureError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPGateway is a payment gateway backed by the processor's HTTP API.
type HTTPGateway struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
	logger    logx.Logger
}

// NewHTTPGateway creates a payment gateway client. The injected
// http.Client controls transport timeouts; pass nil for the default.
func NewHTTPGateway(baseURL, keyID, keySecret string, client *http.Client, logger logx.Logger) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &HTTPGateway{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    client,
		logger:    logger,
	}
}

// Capture charges the delivery fee with the processor. The delivery id
// doubles as the idempotency key and the processor order reference, so
// a repeated capture for the same delivery returns the original
// receipt instead of charging twice.
func (g *HTTPGateway) Capture(ctx context.Context, deliveryID, method string, amount int64) (Receipt, error) {
	body, err := json.Marshal(captureRequest{
		OrderRef: deliveryID,
		Method:   method,
		Amount:   amount,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/captures", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", deliveryID)
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return Receipt{}, &GatewayError{Transient: true, Code: "network_error", Message: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var r Receipt
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return Receipt{}, &GatewayError{Transient: true, Code: "bad_response", Message: err.Error()}
		}
		return r, nil

	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		var ce captureError
		if err := json.NewDecoder(resp.Body).Decode(&ce); err != nil {
			ce = captureError{Code: "declined", Message: "payment declined"}
		}
		return Receipt{}, &GatewayError{Transient: false, Code: ce.Code, Message: ce.Message}

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Receipt{}, &GatewayError{
			Transient: true,
			Code:      fmt.Sprintf("http_%d", resp.StatusCode),
			Message:   "processor unavailable",
		}

	default:
		return Receipt{}, &GatewayError{
			Transient: false,
			Code:      fmt.Sprintf("http_%d", resp.StatusCode),
			Message:   "unexpected processor response",
		}
	}
}
