package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookbridge-delivery/internal/gateway/payment"
	"bookbridge-delivery/internal/logx"
	"bookbridge-delivery/internal/service/payments"
)

const webhookSecret = "whsec_test"

type stubProcessor struct {
	handleFn func(ctx context.Context, e payments.Event) error
}

func (s *stubProcessor) Handle(ctx context.Context, e payments.Event) error {
	if s.handleFn == nil {
		panic("Handle not expected in this test")
	}
	return s.handleFn(ctx, e)
}

func signedRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set(signatureHeader, payment.Sign([]byte(body), webhookSecret))
	return req
}

func TestWebhook_ValidSignatureProcessed(t *testing.T) {
	t.Parallel()

	body := `{"id":"evt-1","type":"payment.captured","order_ref":"d-1","payment_id":"pay_1"}`

	var got payments.Event
	p := &stubProcessor{
		handleFn: func(_ context.Context, e payments.Event) error {
			got = e
			return nil
		},
	}

	h := NewWebhookHandler(logx.Nop(), p, webhookSecret, nil)
	rr := httptest.NewRecorder()
	h.Receive(rr, signedRequest(t, body))

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "evt-1", got.ID)
	require.Equal(t, payments.TypeCaptured, got.Type)
	require.Equal(t, "d-1", got.OrderRef)
	require.Equal(t, "pay_1", got.PaymentID)
}

func TestWebhook_BadSignatureRejected(t *testing.T) {
	t.Parallel()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "webhook_rejected_test_total"})
	h := NewWebhookHandler(logx.Nop(), &stubProcessor{}, webhookSecret, counter)

	body := `{"id":"evt-1","type":"payment.captured","order_ref":"d-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set(signatureHeader, "deadbeef")

	rr := httptest.NewRecorder()
	h.Receive(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(counter), 0.001)
}

func TestWebhook_MissingSignatureRejected(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(logx.Nop(), &stubProcessor{}, webhookSecret, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.Receive(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWebhook_TamperedBodyRejected(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(logx.Nop(), &stubProcessor{}, webhookSecret, nil)

	body := `{"id":"evt-1","type":"payment.captured","order_ref":"d-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(`{"id":"evt-x"}`))
	req.Header.Set(signatureHeader, payment.Sign([]byte(body), webhookSecret))

	rr := httptest.NewRecorder()
	h.Receive(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWebhook_BadJSONAfterValidSignature(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(logx.Nop(), &stubProcessor{}, webhookSecret, nil)

	rr := httptest.NewRecorder()
	h.Receive(rr, signedRequest(t, "not-json"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebhook_ProcessorErrorReturns500(t *testing.T) {
	t.Parallel()

	p := &stubProcessor{
		handleFn: func(context.Context, payments.Event) error {
			return errors.New("db down")
		},
	}
	h := NewWebhookHandler(logx.Nop(), p, webhookSecret, nil)

	body := `{"id":"evt-1","type":"payment.captured","order_ref":"d-1"}`
	rr := httptest.NewRecorder()
	h.Receive(rr, signedRequest(t, body))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
