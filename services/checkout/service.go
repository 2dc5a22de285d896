package checkout

import (
	"context"
	"fmt"
	"time"

	"ampquote/pkg/config"
	"ampquote/pkg/kv"
	"ampquote/pkg/rediskey"
	"ampquote/pkg/task"
	"ampquote/services/license"
	"ampquote/services/notification"
	"ampquote/services/token"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Outcome classifies how an already-authenticated purchase event was
// handled. Every outcome is acknowledged to the provider; only the
// signature check ahead of Process can reject a delivery.
type Outcome string

const (
	OutcomeActivated  Outcome = "activated"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeNoIdentity Outcome = "no_identity"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeFailed     Outcome = "failed"
)

// Service is the purchase event intake. It turns one qualifying
// billing event into exactly one license activation, one redemption
// token and at most one notification dispatch.
type Service struct {
	store     kv.Store
	licenses  *license.Service
	tokens    *token.Service
	customers CustomerAPI
	enqueuer  task.Enqueuer
	node      *snowflake.Node
	logger    *zap.Logger

	appURL   string
	dedupTTL time.Duration
}

type ServiceParams struct {
	fx.In

	Store     kv.Store
	Licenses  *license.Service
	Tokens    *token.Service
	Customers CustomerAPI
	Enqueuer  task.Enqueuer
	Node      *snowflake.Node
	Config    *config.Config
	Logger    *zap.Logger
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     p.Store,
		licenses:  p.Licenses,
		tokens:    p.Tokens,
		customers: p.Customers,
		enqueuer:  p.Enqueuer,
		node:      p.Node,
		logger:    logger,
		appURL:    p.Config.Gate.AppURL,
		dedupTTL:  p.Config.Gate.DedupTTL,
	}
}

var tracer = otel.Tracer("ampquote/services/checkout")

// Process runs the intake state machine over one verified event:
// filter, resolve identity, claim the dedup marker, activate the
// license, issue a token, enqueue the notification. A non-nil error
// is for the caller's log only; the delivery is still acknowledged.
func (s *Service) Process(ctx context.Context, evt Event) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "checkout.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("billing.event_id", evt.ID),
		attribute.String("billing.event_type", evt.Type),
	)

	log := s.logger.With(zap.String("event_id", evt.ID), zap.String("event_type", evt.Type))

	if !evt.Qualifies() {
		log.Debug("event kind not recognized, ignoring")
		return OutcomeIgnored, nil
	}

	identifier, ok := s.resolveIdentity(ctx, evt)
	if !ok {
		log.Warn("no purchaser address resolvable, skipping")
		return OutcomeNoIdentity, nil
	}
	log = log.With(zap.String("identifier", identifier))

	claimed, err := s.store.SetIfAbsent(ctx,
		rediskey.BuildBillingEventKey(evt.ID),
		time.Now().UTC().Format(time.RFC3339),
		s.dedupTTL)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("claim dedup marker: %w", err)
	}
	if !claimed {
		log.Info("duplicate delivery, skipping")
		return OutcomeDuplicate, nil
	}

	if err := s.licenses.Activate(ctx, identifier, evt.ID); err != nil {
		return OutcomeFailed, fmt.Errorf("activate license: %w", err)
	}

	tok, err := s.tokens.Issue(ctx, identifier)
	if err != nil {
		// The license is already active; the purchaser can still
		// unlock via manual key entry.
		return OutcomeFailed, fmt.Errorf("issue token: %w", err)
	}

	payload := notification.LicenseLinkPayload{
		DeliveryID: s.node.Generate().String(),
		To:         identifier,
		License:    identifier,
		Token:      tok,
		UnlockURL:  fmt.Sprintf("%s/?license_token=%s", s.appURL, tok),
	}
	if _, err := s.enqueuer.Enqueue(notification.NewLicenseLinkTask(payload)); err != nil {
		// Dispatch failure never rolls back the activation.
		log.Error("failed to enqueue license notification", zap.Error(err))
		return OutcomeActivated, nil
	}

	log.Info("license activated and notification enqueued")
	return OutcomeActivated, nil
}

// resolveIdentity walks the fallback chain: inline customer details,
// the alternate inline field, then the provider's customer record.
func (s *Service) resolveIdentity(ctx context.Context, evt Event) (string, bool) {
	if email := evt.InlineEmail(); email != "" {
		return license.Normalize(email), true
	}

	if customerID := evt.Data.Object.Customer; customerID != "" {
		email, err := s.customers.CustomerEmail(ctx, customerID)
		if err != nil {
			s.logger.Warn("customer lookup failed",
				zap.String("event_id", evt.ID),
				zap.String("customer", customerID),
				zap.Error(err))
			return "", false
		}
		if email != "" {
			return license.Normalize(email), true
		}
	}

	return "", false
}
