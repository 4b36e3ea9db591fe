package auth

import "time"

// TokenTypeBearer is the token_type of every issued token
const TokenTypeBearer = "bearer"

// TokenResponse is the result of a successful register or login
type TokenResponse struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	Identity    Identity
}

func newTokenResponse(token string, lifetime time.Duration, identity Identity) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(lifetime / time.Second),
		Identity:    identity,
	}
}
