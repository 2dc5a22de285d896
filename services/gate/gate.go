package gate

import (
	"context"

	"ampquote/pkg/config"
	"ampquote/pkg/featureflags"
	"ampquote/services/license"
	"ampquote/services/token"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// State of the access gate for the current session.
type State string

const (
	StateLoading  State = "loading"
	StateLocked   State = "locked"
	StateUnlocked State = "unlocked"
)

// User-facing messages for the locked paths.
const (
	MsgLinkInvalid    = "link invalid or already used"
	MsgLicenseRevoked = "license no longer valid"
	MsgKeyInvalid     = "invalid license key"
)

// CredentialStore is the client-local persistence for the access
// credential; in the browser this is a single localStorage key.
type CredentialStore interface {
	Load(ctx context.Context) (string, bool)
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// Resolution is the gate's decision for one load.
type Resolution struct {
	State   State
	License string
	// StripToken asks the client to replace the visible URL so the
	// consumed token does not resurface on back-navigation.
	StripToken bool
	Message    string
}

// Service drives the access-gate state machine: redeem a URL token if
// one is present, otherwise verify a stored credential, otherwise
// prompt for manual entry. Unlocked is terminal for the session.
type Service struct {
	tokens   *token.Service
	licenses *license.Service
	creds    CredentialStore
	enabled  bool
	logger   *zap.Logger
}

type ServiceParams struct {
	fx.In

	Tokens      *token.Service
	Licenses    *license.Service
	Credentials CredentialStore
	Enabled     Toggle
	Logger      *zap.Logger
}

func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tokens:   p.Tokens,
		licenses: p.Licenses,
		creds:    p.Credentials,
		enabled:  bool(p.Enabled),
		logger:   logger,
	}
}

// Resolve runs the mount-time decision for one page load. tokenParam
// is the redemption token from the URL, empty when absent.
func (s *Service) Resolve(ctx context.Context, tokenParam string) Resolution {
	if !s.enabled {
		return Resolution{State: StateUnlocked}
	}

	if tokenParam != "" {
		if licenseID, ok := s.tokens.Redeem(ctx, tokenParam); ok {
			if err := s.creds.Save(ctx, licenseID); err != nil {
				s.logger.Warn("failed to persist credential", zap.Error(err))
			}
			return Resolution{State: StateUnlocked, License: licenseID, StripToken: true}
		}
		return Resolution{State: StateLocked, StripToken: true, Message: MsgLinkInvalid}
	}

	if credential, ok := s.creds.Load(ctx); ok {
		if s.licenses.IsActive(ctx, credential) {
			return Resolution{State: StateUnlocked, License: credential}
		}
		if err := s.creds.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear credential", zap.Error(err))
		}
		return Resolution{State: StateLocked, Message: MsgLicenseRevoked}
	}

	return Resolution{State: StateLocked}
}

// SubmitKey verifies a manually entered license key.
func (s *Service) SubmitKey(ctx context.Context, key string) Resolution {
	key = license.Normalize(key)
	if !s.licenses.IsActive(ctx, key) {
		return Resolution{State: StateLocked, Message: MsgKeyInvalid}
	}

	if err := s.creds.Save(ctx, key); err != nil {
		s.logger.Warn("failed to persist credential", zap.Error(err))
	}
	return Resolution{State: StateUnlocked, License: key}
}

// Toggle is the gate on/off switch, resolved once at startup.
type Toggle bool

type ToggleParams struct {
	fx.In

	Config *config.Config
	Flags  featureflags.FeatureFlag
}

// ResolveToggle reads the configured value, letting a named feature
// flag override it when one is configured.
func ResolveToggle(p ToggleParams) Toggle {
	enabled := p.Config.Gate.Enabled
	if p.Config.Flagsmith.GateFlag != "" {
		enabled = p.Flags.IsEnabled(context.Background(), p.Config.Flagsmith.GateFlag, enabled)
	}
	return Toggle(enabled)
}
