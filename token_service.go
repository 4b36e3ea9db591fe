package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService issues, verifies and revokes access tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	Encode(publicID string, admin bool, lifetime time.Duration) (string, error)
	Decode(ctx context.Context, token string) (*Claims, error)
	Revoke(ctx context.Context, claims *Claims) error
	Lifetime() time.Duration
	Now() time.Time
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	lifetime   time.Duration
	issuer     string
	store      RevocationStore
	logger     Logger
	clock      func() time.Time
	metrics    TokenRecorder
}

// TokenServiceOption configures a TokenServiceImpl
type TokenServiceOption func(*TokenServiceImpl)

// WithClock overrides time.Now, used for issuance and expiry checks
func WithClock(clock func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if clock != nil {
			ts.clock = clock
		}
	}
}

// WithTokenMetrics counts issued and revoked tokens
func WithTokenMetrics(m TokenRecorder) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if m != nil {
			ts.metrics = m
		}
	}
}

// WithTokenLogger sets the service logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.logger = normalizeLogger(logger)
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, lifetime time.Duration, issuer string, store RevocationStore, opts ...TokenServiceOption) *TokenServiceImpl {
	if store == nil {
		store = NewMemoryRevocationStore()
	}

	ts := &TokenServiceImpl{
		signingKey: signingKey,
		lifetime:   lifetime,
		issuer:     issuer,
		store:      store,
		logger:     defLogger{},
		clock:      time.Now,
		metrics:    noopTokenRecorder{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// NewTokenServiceFromConfig builds a service from a Config
func NewTokenServiceFromConfig(cfg Config, store RevocationStore, opts ...TokenServiceOption) *TokenServiceImpl {
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenLifetime(), cfg.GetIssuer(), store, opts...)
}

// Generate creates a token for identity using the default lifetime
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}
	return ts.Encode(identity.PublicID(), identity.IsAdmin(), ts.lifetime)
}

// Encode signs a token asserting publicID and admin, valid for lifetime
func (ts *TokenServiceImpl) Encode(publicID string, admin bool, lifetime time.Duration) (string, error) {
	if publicID == "" {
		return "", errors.New("public id must not be empty", errors.CategoryInternal)
	}

	if lifetime <= 0 {
		return "", errors.New("token lifetime must be positive", errors.CategoryInternal).
			WithMetadata(map[string]any{"lifetime": lifetime.String()})
	}

	now := ts.clock()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   publicID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		Admin: admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	ts.metrics.RecordIssued()
	return signedString, nil
}

// Decode verifies the signature, then the expiry, then the revocation
// store, in that order
func (ts *TokenServiceImpl) Decode(ctx context.Context, tokenString string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.clock),
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, withMetadata(ErrTokenExpired, err, nil)
		}
		return nil, withMetadata(ErrTokenMalformed, err, nil)
	}

	jc, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || jc.RegisteredClaims.Subject == "" {
		ts.logger.Error("TokenService decode could not map claims")
		return nil, withMetadata(ErrTokenMalformed, nil, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "token check cancelled")
	}

	revoked, err := ts.store.Contains(ctx, tokenString)
	if err != nil {
		ts.logger.Error("TokenService revocation lookup failed", "error", err)
		return nil, withMetadata(ErrRevocationStore, err, map[string]any{"operation": "contains"})
	}

	if revoked {
		return nil, withMetadata(ErrTokenBlacklisted, nil, nil)
	}

	return newClaims(tokenString, jc), nil
}

// Revoke adds the token behind claims to the revocation store. Calling it
// again for the same token is a no-op.
func (ts *TokenServiceImpl) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.RawToken() == "" {
		return errors.New("claims must carry a token", errors.CategoryInternal)
	}

	if err := ts.store.Add(ctx, claims.RawToken(), claims.Expires()); err != nil {
		ts.logger.Error("TokenService revocation add failed", "error", err)
		return withMetadata(ErrRevocationStore, err, map[string]any{"operation": "add"})
	}

	ts.metrics.RecordRevocation()
	return nil
}

// Lifetime returns the default token lifetime
func (ts *TokenServiceImpl) Lifetime() time.Duration {
	return ts.lifetime
}

// Now returns the service clock reading
func (ts *TokenServiceImpl) Now() time.Time {
	return ts.clock()
}
