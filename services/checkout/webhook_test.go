package checkout

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ampquote/pkg/middleware"
)

const webhookSecret = "whsec_test"

func newWebhookFixture(t *testing.T) (*fixture, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newFixture(t, &fakeCustomerAPI{})

	handler := &WebhookHandler{
		service:   f.svc,
		secret:    webhookSecret,
		tolerance: 5 * time.Minute,
		logger:    zap.NewNop(),
	}

	engine := gin.New()
	engine.Use(middleware.Error())
	RegisterRoutes(engine, handler)
	return f, engine
}

func deliver(engine *gin.Engine, body []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
	if header != "" {
		req.Header.Set(SignatureHeader, header)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func signedBody(id, kind, email string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"object":{"customer_details":{"email":%q}}}}`,
		id, kind, email))
}

func TestWebhookValidDeliveryActivates(t *testing.T) {
	f, engine := newWebhookFixture(t)

	body := signedBody("evt_1", EventCheckoutCompleted, "a@example.com")
	rec := deliver(engine, body, Sign(webhookSecret, body, time.Now()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.licenses.IsActive(t.Context(), "a@example.com"))
	require.Len(t, f.enqueuer.tasks, 1)
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	f, engine := newWebhookFixture(t)

	body := signedBody("evt_1", EventCheckoutCompleted, "a@example.com")
	rec := deliver(engine, body, Sign("whsec_wrong", body, time.Now()))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, f.licenses.IsActive(t.Context(), "a@example.com"))
	require.Empty(t, f.enqueuer.tasks)
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	_, engine := newWebhookFixture(t)

	body := signedBody("evt_1", EventCheckoutCompleted, "a@example.com")
	rec := deliver(engine, body, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRedeliveryAcknowledgedOnce(t *testing.T) {
	f, engine := newWebhookFixture(t)

	body := signedBody("evt_1", EventCheckoutCompleted, "a@example.com")

	rec := deliver(engine, body, Sign(webhookSecret, body, time.Now()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = deliver(engine, body, Sign(webhookSecret, body, time.Now()))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.enqueuer.tasks, 1)
}

func TestWebhookUnrecognizedKindAcknowledged(t *testing.T) {
	f, engine := newWebhookFixture(t)

	body := signedBody("evt_1", "customer.updated", "a@example.com")
	rec := deliver(engine, body, Sign(webhookSecret, body, time.Now()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, f.enqueuer.tasks)
}

func TestWebhookMalformedJSONAcknowledged(t *testing.T) {
	_, engine := newWebhookFixture(t)

	body := []byte(`{not json`)
	rec := deliver(engine, body, Sign(webhookSecret, body, time.Now()))

	require.Equal(t, http.StatusOK, rec.Code)
}
