// Package api mounts the widget HTTP API on a fiber router.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/middleware/jwtware"
)

// Prefix is the versioned root of every route
const Prefix = "/api/v1"

// Options are the dependencies Register wires into the controllers
type Options struct {
	Logger        auth.Logger
	Repo          auth.RepositoryManager
	Tokens        auth.TokenService
	Authenticator *auth.Authenticator
	Register      *auth.RegisterUserHandler
	Login         *auth.LoginUserHandler
	Logout        *auth.LogoutUserHandler
	UseHashid     bool
	BaseURL       string
	// ContextKey is the fiber Locals key the guard stores claims under
	ContextKey string
}

// Register mounts the auth and widget routes under Prefix
func Register(router fiber.Router, opts Options) fiber.Router {
	if opts.Logger == nil {
		opts.Logger = auth.NewZapLogger(nil)
	}

	if opts.ContextKey == "" {
		opts.ContextKey = auth.DefaultContextKey
	}

	guard := jwtware.Config{Logger: opts.Logger, ContextKey: opts.ContextKey}
	userRequired := jwtware.TokenRequired(opts.Authenticator, guard)
	adminRequired := jwtware.AdminTokenRequired(opts.Authenticator, guard)

	authc := &AuthController{
		Logger:     opts.Logger,
		Repo:       opts.Repo,
		Tokens:     opts.Tokens,
		Register:   opts.Register,
		Login:      opts.Login,
		Logout:     opts.Logout,
		UseHashid:  opts.UseHashid,
		ContextKey: opts.ContextKey,
	}

	widgets := &WidgetController{
		Logger:     opts.Logger,
		Repo:       opts.Repo,
		BaseURL:    opts.BaseURL,
		Clock:      opts.Tokens.Now,
		ContextKey: opts.ContextKey,
	}

	v1 := router.Group(Prefix)

	a := v1.Group("/auth")
	a.Post("/register", authc.RegisterPost)
	a.Post("/login", authc.LoginPost)
	a.Get("/user", userRequired, authc.UserGet)
	a.Post("/logout", userRequired, authc.LogoutPost)

	w := v1.Group("/widgets")
	w.Post("/", adminRequired, widgets.Create)
	w.Get("/", userRequired, widgets.List)
	w.Get("/:name", userRequired, widgets.Get)
	w.Put("/:name", adminRequired, widgets.Update)
	w.Delete("/:name", adminRequired, widgets.Delete)

	return v1
}
