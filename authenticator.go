package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// DefaultAuthScheme is the credential header scheme
const DefaultAuthScheme = "Bearer"

// Authenticator turns a raw Authorization header into verified claims or
// one of the FailureKind errors. It holds no mutable state.
type Authenticator struct {
	tokens  TokenService
	scheme  string
	metrics DecisionRecorder
	logger  Logger
}

// AuthenticatorOption configures an Authenticator
type AuthenticatorOption func(*Authenticator)

// WithAuthScheme overrides the expected header scheme
func WithAuthScheme(scheme string) AuthenticatorOption {
	return func(a *Authenticator) {
		if s := strings.TrimSpace(scheme); s != "" {
			a.scheme = s
		}
	}
}

// WithDecisionRecorder records every outcome, see Metrics
func WithDecisionRecorder(r DecisionRecorder) AuthenticatorOption {
	return func(a *Authenticator) {
		if r != nil {
			a.metrics = r
		}
	}
}

// WithAuthenticatorLogger sets the logger
func WithAuthenticatorLogger(l Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		a.logger = normalizeLogger(l)
	}
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(tokens TokenService, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		tokens:  tokens,
		scheme:  DefaultAuthScheme,
		metrics: noopDecisionRecorder{},
		logger:  defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Tokens returns the token service backing the authenticator
func (a *Authenticator) Tokens() TokenService {
	return a.tokens
}

// Scheme returns the expected header scheme
func (a *Authenticator) Scheme() string {
	return a.scheme
}

// Authenticate checks header and, when adminRequired is set, the admin flag.
// Returned errors carry admin_required metadata.
func (a *Authenticator) Authenticate(ctx context.Context, header string, adminRequired bool) (*Claims, error) {
	meta := map[string]any{"admin_required": adminRequired}

	token, ok := TokenFromHeader(header, a.scheme)
	if !ok {
		a.metrics.RecordDecision(FailureNoCredentials, adminRequired)
		return nil, withMetadata(ErrNoCredentials, nil, meta)
	}

	claims, err := a.tokens.Decode(ctx, token)
	if err != nil {
		kind, known := KindOf(err)
		if !known {
			a.logger.Error("authenticate failed with unexpected error", "error", err)
			a.metrics.RecordError(adminRequired)
			return nil, err
		}

		a.metrics.RecordDecision(kind, adminRequired)

		var rich *errors.Error
		if errors.As(err, &rich) && rich != nil {
			rich.WithMetadata(meta)
			return nil, rich
		}
		return nil, err
	}

	if adminRequired && !claims.IsAdmin() {
		a.metrics.RecordDecision(FailureInsufficientPrivilege, adminRequired)
		return nil, withMetadata(ErrInsufficientPrivilege, nil, map[string]any{
			"admin_required": adminRequired,
			"public_id":      claims.PublicID(),
		})
	}

	a.metrics.RecordDecision(FailureNone, adminRequired)
	return claims, nil
}

// TokenFromHeader strips scheme from header. The scheme is matched case
// insensitively and must be followed by a non empty token.
func TokenFromHeader(header, scheme string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme = strings.TrimSpace(scheme)
	l := len(scheme)
	if l == 0 || len(header) <= l+1 {
		return "", false
	}

	if !strings.EqualFold(header[:l], scheme) || header[l] != ' ' {
		return "", false
	}

	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", false
	}
	return token, true
}
