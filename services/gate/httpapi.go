package gate

import (
	"net/http"

	"ampquote/pkg/config"
	"ampquote/services/license"
	"ampquote/services/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Handler is the public HTTP surface the browser gate talks to.
type Handler struct {
	tokens      *token.Service
	licenses    *license.Service
	enabled     bool
	purchaseURL string
}

type HandlerParams struct {
	fx.In

	Tokens   *token.Service
	Licenses *license.Service
	Enabled  Toggle
	Config   *config.Config
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		tokens:      p.Tokens,
		licenses:    p.Licenses,
		enabled:     bool(p.Enabled),
		purchaseURL: p.Config.Billing.PurchaseURL,
	}
}

type exchangeResponse struct {
	OK      bool   `json:"ok"`
	License string `json:"license,omitempty"`
}

// Exchange consumes a redemption token. A missing, expired or reused
// token answers ok=false with status 200; it is the expected outcome
// for replayed links, not an error.
func (h *Handler) Exchange(c *gin.Context) {
	licenseID, ok := h.tokens.Redeem(c.Request.Context(), c.Query("token"))
	if !ok {
		c.JSON(http.StatusOK, exchangeResponse{OK: false})
		return
	}
	c.JSON(http.StatusOK, exchangeResponse{OK: true, License: licenseID})
}

type verifyRequest struct {
	Key string `json:"key"`
}

type verifyResponse struct {
	OK bool `json:"ok"`
}

// Verify checks a manually entered license key.
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, verifyResponse{OK: false})
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		OK: h.licenses.IsActive(c.Request.Context(), req.Key),
	})
}

type configResponse struct {
	Enabled     bool   `json:"enabled"`
	PurchaseURL string `json:"purchase_url"`
}

// Config tells the client whether the gate is on and where to buy.
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, configResponse{
		Enabled:     h.enabled,
		PurchaseURL: h.purchaseURL,
	})
}

func RegisterRoutes(engine *gin.Engine, handler *Handler) {
	api := engine.Group("/api")
	api.GET("/license/exchange", handler.Exchange)
	api.POST("/license/verify", handler.Verify)
	api.GET("/gate/config", handler.Config)
}
