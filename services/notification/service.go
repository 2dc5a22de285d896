package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"ampquote/pkg/config"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service renders and dispatches the license unlock email. It runs on
// the worker side of the queue; a returned error triggers asynq's
// retry, never a rollback of the activation that produced the task.
type Service struct {
	mailer Mailer
	from   string
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	Mailer Mailer
	Config *config.Config
	Logger *zap.Logger
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		mailer: p.Mailer,
		from:   p.Config.Mail.From,
		logger: logger,
	}
}

func (s *Service) HandleLicenseLinkTask(ctx context.Context, t *asynq.Task) error {
	var payload LicenseLinkPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	msg := Message{
		From:    s.from,
		To:      payload.To,
		Subject: "Your Ampquote license",
		HTML:    renderLicenseLinkHTML(payload),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send license email",
			zap.String("delivery_id", payload.DeliveryID),
			zap.String("to", payload.To),
			zap.Error(err))
		return err
	}

	s.logger.Info("license email sent",
		zap.String("delivery_id", payload.DeliveryID),
		zap.String("to", payload.To))
	return nil
}

func renderLicenseLinkHTML(p LicenseLinkPayload) string {
	return fmt.Sprintf(
		`<p>Thanks for your purchase!</p>
<p><a href="%s">Click here to unlock Ampquote</a>. The link works once and expires in 24 hours.</p>
<p>If the link has expired, enter your license key manually: <strong>%s</strong></p>`,
		html.EscapeString(p.UnlockURL),
		html.EscapeString(p.License),
	)
}
