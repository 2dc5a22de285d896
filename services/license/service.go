package license

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ampquote/pkg/config"
	"ampquote/pkg/kv"
	"ampquote/pkg/rediskey"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service owns the license records. Records live in the key-value
// store under "license:{identifier}" with a rolling TTL; renewal
// purchases simply refresh them.
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
		ttl:    p.Config.Gate.LicenseTTL,
		logger: logger,
	}
}

// Normalize canonicalises a purchaser identifier. The normalized email
// address is the stable license key.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Activate writes or overwrites the license record for identifier with
// active=true and a fresh TTL. Calling it twice is safe; the second
// call only refreshes expiry.
func (s *Service) Activate(ctx context.Context, identifier, sourceEventID string) error {
	identifier = Normalize(identifier)

	record := Record{
		Identifier:    identifier,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
		SourceEventID: sourceEventID,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, rediskey.BuildLicenseKey(identifier), string(payload), s.ttl); err != nil {
		s.logger.Error("failed to write license record",
			zap.String("identifier", identifier),
			zap.String("source_event_id", sourceEventID),
			zap.Error(err))
		return err
	}

	s.logger.Info("license activated",
		zap.String("identifier", identifier),
		zap.String("source_event_id", sourceEventID))
	return nil
}

// IsActive reports whether identifier holds an active license. Absent,
// malformed or unreadable records all read as inactive; callers never
// see a store failure.
func (s *Service) IsActive(ctx context.Context, identifier string) bool {
	identifier = Normalize(identifier)
	if identifier == "" {
		return false
	}

	raw, err := s.store.Get(ctx, rediskey.BuildLicenseKey(identifier))
	if err != nil {
		if err != kv.ErrNotFound {
			s.logger.Warn("license lookup failed, treating as inactive",
				zap.String("identifier", identifier),
				zap.Error(err))
		}
		return false
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn("malformed license record, treating as inactive",
			zap.String("identifier", identifier),
			zap.Error(err))
		return false
	}

	return record.Active
}
