package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read only view handlers get of a verified token
type AuthClaims interface {
	Subject() string
	PublicID() string
	IsAdmin() bool
	Expires() time.Time
	IssuedAt() time.Time
	RawToken() string
}

// JWTClaims is the signed payload. The subject carries the public id.
type JWTClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// Claims are the verified claims of a decoded token
type Claims struct {
	publicID  string
	admin     bool
	tokenID   string
	issuedAt  time.Time
	expiresAt time.Time
	token     string
}

// Verify interface compliance
var _ AuthClaims = (*Claims)(nil)

func newClaims(token string, jc *JWTClaims) *Claims {
	c := &Claims{
		publicID: jc.RegisteredClaims.Subject,
		admin:    jc.Admin,
		tokenID:  jc.RegisteredClaims.ID,
		token:    token,
	}
	if jc.IssuedAt != nil {
		c.issuedAt = jc.IssuedAt.Time.UTC()
	}
	if jc.ExpiresAt != nil {
		c.expiresAt = jc.ExpiresAt.Time.UTC()
	}
	return c
}

// Subject returns the subject claim
func (c *Claims) Subject() string {
	return c.publicID
}

// PublicID returns the identity public id
func (c *Claims) PublicID() string {
	return c.publicID
}

// IsAdmin returns the admin flag
func (c *Claims) IsAdmin() bool {
	return c.admin
}

// TokenID returns the jti claim
func (c *Claims) TokenID() string {
	return c.tokenID
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	return c.expiresAt
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	return c.issuedAt
}

// RawToken returns the token string the claims were decoded from
func (c *Claims) RawToken() string {
	return c.token
}

// ExpiresIn returns the number of whole seconds left before expiry
func (c *Claims) ExpiresIn(now time.Time) int64 {
	left := c.expiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}
