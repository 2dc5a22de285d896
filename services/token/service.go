package token

import (
	"context"
	"time"

	"ampquote/pkg/config"
	"ampquote/pkg/kv"
	"ampquote/pkg/rediskey"
	"ampquote/pkg/util"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service owns the short-lived single-use redemption tokens. A token
// maps "token:{random}" to a license identifier and survives the
// earlier of first redemption or its TTL.
type Service struct {
	store  kv.Store
	ttl    time.Duration
	logger *zap.Logger
}

type ServiceParams struct {
	fx.In

	Store  kv.Store
	Config *config.Config
	Logger *zap.Logger
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  p.Store,
		ttl:    p.Config.Gate.TokenTTL,
		logger: logger,
	}
}

// Issue mints a fresh redemption token bound to licenseID.
func (s *Service) Issue(ctx context.Context, licenseID string) (string, error) {
	tok := util.GenerateToken()

	if err := s.store.Set(ctx, rediskey.BuildTokenKey(tok), licenseID, s.ttl); err != nil {
		s.logger.Error("failed to store redemption token",
			zap.String("license", licenseID),
			zap.Error(err))
		return "", err
	}

	s.logger.Info("redemption token issued", zap.String("license", licenseID))
	return tok, nil
}

// Redeem consumes a token and returns the license identifier it was
// bound to. The read and the delete are one atomic operation, so a
// concurrent or repeated redeem observes absent. Absent is the normal
// outcome for replayed or expired links, not an error.
func (s *Service) Redeem(ctx context.Context, tok string) (string, bool) {
	if tok == "" {
		return "", false
	}

	licenseID, err := s.store.GetDel(ctx, rediskey.BuildTokenKey(tok))
	if err != nil {
		if err != kv.ErrNotFound {
			s.logger.Warn("token redemption unavailable", zap.Error(err))
		}
		return "", false
	}

	s.logger.Info("redemption token consumed", zap.String("license", licenseID))
	return licenseID, true
}
