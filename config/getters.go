package config

import (
	"time"

	"github.com/goliatone/go-widget-auth"
)

var _ auth.Config = (*Config)(nil)

func (c *Config) GetSigningKey() string {
	return c.Auth.SecretKey
}

func (c *Config) GetTokenLifetime() time.Duration {
	return c.Auth.TokenLifetime
}

func (c *Config) GetIssuer() string {
	return c.Auth.Issuer
}

func (c *Config) GetAuthScheme() string {
	return c.Auth.AuthScheme
}

func (c *Config) GetContextKey() string {
	return c.Auth.ContextKey
}
