package checkout

import (
	"io"
	"net/http"
	"time"

	"ampquote/pkg/config"
	"ampquote/pkg/errutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// WebhookHandler terminates the payment provider's webhook. Only
// signature verification may reject a delivery; every later failure is
// absorbed and the delivery acknowledged so the provider does not
// retry.
type WebhookHandler struct {
	service   *Service
	secret    string
	tolerance time.Duration
	logger    *zap.Logger
}

type WebhookParams struct {
	fx.In

	Service *Service
	Config  *config.Config
	Logger  *zap.Logger
}

func NewWebhookHandler(p WebhookParams) *WebhookHandler {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		service:   p.Service,
		secret:    p.Config.Billing.WebhookSecret,
		tolerance: p.Config.Billing.SignatureTolerance,
		logger:    logger,
	}
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	// The signature covers the raw bytes; read them before any JSON
	// interpretation.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.Error(errutil.BadRequest("unreadable body", errutil.WithErr(err)))
		return
	}

	if err := VerifySignature(h.secret, c.GetHeader(SignatureHeader), body, h.tolerance, time.Now()); err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		_ = c.Error(errutil.Unauthorized("signature verification failed", errutil.WithErr(err)))
		return
	}

	evt, err := ParseEvent(body)
	if err != nil {
		// Authenticated but unparseable; acknowledge so the provider
		// does not redeliver the same payload forever.
		h.logger.Error("failed to parse webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	outcome, err := h.service.Process(c.Request.Context(), evt)
	if err != nil {
		h.logger.Error("purchase event processing failed",
			zap.String("event_id", evt.ID),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func RegisterRoutes(engine *gin.Engine, handler *WebhookHandler) {
	engine.POST("/webhooks/billing", handler.Handle)
}
