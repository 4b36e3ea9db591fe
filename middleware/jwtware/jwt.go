package jwtware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-widget-auth"
)

// ClaimsAuthenticator is satisfied by *auth.Authenticator
type ClaimsAuthenticator interface {
	Authenticate(ctx context.Context, header string, adminRequired bool) (*auth.Claims, error)
}

// ValidationListener is invoked after a token has been accepted, before the handler runs.
// An error stops the request with the internal error response.
type ValidationListener func(c *fiber.Ctx, claims *auth.Claims) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	// ErrorHandler receives every failure. The default writes the failure
	// table response for auth errors and a 500 for anything else.
	ErrorHandler  func(c *fiber.Ctx, err error) error
	Authenticator ClaimsAuthenticator
	AdminRequired bool
	ContextKey    string
	// Header is the request header carrying the credential
	Header string

	// ContextEnricher propagates claims to the standard Go context. Defaults
	// to auth.WithClaimsContext.
	ContextEnricher func(c context.Context, claims *auth.Claims) context.Context

	ValidationListeners []ValidationListener
	Logger              auth.Logger
}

// New returns a guard that runs the handler chain only for requests whose
// token passes the authenticator.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		claims, err := cfg.Authenticator.Authenticate(c.UserContext(), c.Get(cfg.Header), cfg.AdminRequired)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		for _, listener := range cfg.ValidationListeners {
			if err := listener(c, claims); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, claims)
		c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))

		return cfg.SuccessHandler(c)
	}
}

// TokenRequired guards routes open to any authenticated user
func TokenRequired(a ClaimsAuthenticator, config ...Config) fiber.Handler {
	return New(guardConfig(a, false, config...))
}

// AdminTokenRequired guards admin only routes
func AdminTokenRequired(a ClaimsAuthenticator, config ...Config) fiber.Handler {
	return New(guardConfig(a, true, config...))
}

func guardConfig(a ClaimsAuthenticator, adminRequired bool, config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg.Authenticator = a
	cfg.AdminRequired = adminRequired
	return cfg
}

// Claims returns the claims stored by the guard under the default key
func Claims(c *fiber.Ctx) (*auth.Claims, bool) {
	return auth.GetFiberClaims(c, auth.DefaultContextKey)
}

// ClaimsFrom returns the claims a guard configured with key stored
func ClaimsFrom(c *fiber.Ctx, key string) (*auth.Claims, bool) {
	return auth.GetFiberClaims(c, key)
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authenticator == nil {
		panic("AUTH: JWT middleware configuration: Authenticator is required.")
	}

	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler(cfg.AdminRequired, cfg.Logger)
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = auth.DefaultContextKey
	}

	if cfg.Header == "" {
		cfg.Header = fiber.HeaderAuthorization
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = auth.WithClaimsContext
	}

	return cfg
}

// DefaultErrorHandler maps auth failures through the failure table.
// Errors outside the auth taxonomy, such as a revocation store outage,
// are answered with 500 and no challenge.
func DefaultErrorHandler(adminRequired bool, logger auth.Logger) func(c *fiber.Ctx, err error) error {
	return func(c *fiber.Ctx, err error) error {
		if kind, ok := auth.KindOf(err); ok {
			return auth.WriteFailure(c, kind, adminRequired)
		}

		logger.Error("guard rejected request with internal error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(auth.FailureBody{
			Status:  "fail",
			Message: "Internal server error.",
		})
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
