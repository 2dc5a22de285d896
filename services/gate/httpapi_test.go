package gate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newHTTPFixture(t *testing.T) (*gateFixture, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := newGateFixture(true)
	cfg := testConfig()
	cfg.Billing.PurchaseURL = "https://buy.ampquote.test"

	handler := NewHandler(HandlerParams{
		Tokens:   f.tokens,
		Licenses: f.licenses,
		Enabled:  Toggle(true),
		Config:   cfg,
	})

	engine := gin.New()
	RegisterRoutes(engine, handler)
	return f, engine
}

func TestExchangeEndpoint(t *testing.T) {
	ctx := t.Context()
	f, engine := newHTTPFixture(t)

	tok, err := f.tokens.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/license/exchange?token="+tok, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp exchangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "a@example.com", resp.License)

	// Second exchange of the same token observes absent.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/license/exchange?token="+tok, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp = exchangeResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.OK)
	require.Empty(t, resp.License)
}

func TestExchangeEndpointMissingToken(t *testing.T) {
	_, engine := newHTTPFixture(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/license/exchange", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp exchangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.OK)
}

func TestVerifyEndpoint(t *testing.T) {
	ctx := t.Context()
	f, engine := newHTTPFixture(t)

	require.NoError(t, f.licenses.Activate(ctx, "a@example.com", "evt_1"))

	for _, tc := range []struct {
		body string
		ok   bool
	}{
		{`{"key":"a@example.com"}`, true},
		{`{"key":" A@EXAMPLE.COM "}`, true},
		{`{"key":"nobody@example.com"}`, false},
		{`{not json`, false},
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/license/verify", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp verifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, tc.ok, resp.OK, "body %s", tc.body)
	}
}

func TestGateConfigEndpoint(t *testing.T) {
	_, engine := newHTTPFixture(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gate/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp configResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Enabled)
	require.Equal(t, "https://buy.ampquote.test", resp.PurchaseURL)
}
