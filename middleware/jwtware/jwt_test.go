package jwtware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/middleware/jwtware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("test-secret")

type brokenStore struct{}

func (brokenStore) Add(context.Context, string, time.Time) error { return errors.New("down") }

func (brokenStore) Contains(context.Context, string) (bool, error) { return false, errors.New("down") }

func newTokens(store auth.RevocationStore) *auth.TokenServiceImpl {
	return auth.NewTokenService(signingKey, time.Hour, "test", store)
}

func protectedApp(guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/protected", guard, func(c *fiber.Ctx) error {
		claims, ok := jwtware.Claims(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		ctxClaims, ok := auth.GetClaims(c.UserContext())
		if !ok || ctxClaims != claims {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString(claims.PublicID())
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, header string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestGuards(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryRevocationStore()
	tokens := newTokens(store)
	authenticator := auth.NewAuthenticator(tokens)

	userToken, err := tokens.Encode("user-id", false, time.Hour)
	require.NoError(t, err)
	adminToken, err := tokens.Encode("admin-id", true, time.Hour)
	require.NoError(t, err)
	revoked, err := tokens.Encode("user-id", false, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, revoked, time.Now().Add(time.Hour)))

	expiredTokens := auth.NewTokenService(signingKey, time.Hour, "test", nil,
		auth.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	expired, err := expiredTokens.Encode("user-id", false, time.Hour)
	require.NoError(t, err)

	userApp := protectedApp(jwtware.TokenRequired(authenticator))
	adminApp := protectedApp(jwtware.AdminTokenRequired(authenticator))

	tests := []struct {
		name      string
		app       *fiber.App
		header    string
		status    int
		challenge string
		message   string
		body      string
	}{
		{
			name:   "user route accepts user token",
			app:    userApp,
			header: "Bearer " + userToken,
			status: http.StatusOK,
			body:   "user-id",
		},
		{
			name:   "admin route accepts admin token",
			app:    adminApp,
			header: "Bearer " + adminToken,
			status: http.StatusOK,
			body:   "admin-id",
		},
		{
			name:      "missing header",
			app:       userApp,
			status:    http.StatusUnauthorized,
			challenge: `Bearer realm="registered_users@mydomain.com"`,
			message:   "Unauthorized",
		},
		{
			name:      "missing header on admin route",
			app:       adminApp,
			status:    http.StatusUnauthorized,
			challenge: `Bearer realm="admin_users@mydomain.com"`,
			message:   "Unauthorized",
		},
		{
			name:      "invalid token",
			app:       userApp,
			header:    "Bearer nope",
			status:    http.StatusUnauthorized,
			challenge: `Bearer realm="registered_users@mydomain.com", error="invalid_token", error_description="Invalid token. Please log in again."`,
			message:   "Invalid token. Please log in again.",
		},
		{
			name:      "expired token",
			app:       userApp,
			header:    "Bearer " + expired,
			status:    http.StatusUnauthorized,
			challenge: `Bearer realm="registered_users@mydomain.com", error="invalid_token", error_description="Token expired. Please log in again."`,
			message:   "Token expired. Please log in again.",
		},
		{
			name:      "blacklisted token on admin route",
			app:       adminApp,
			header:    "Bearer " + revoked,
			status:    http.StatusUnauthorized,
			challenge: `Bearer realm="admin_users@mydomain.com", error="invalid_token", error_description="Token blacklisted. Please log in again."`,
			message:   "Token blacklisted. Please log in again.",
		},
		{
			name:      "user token on admin route",
			app:       adminApp,
			header:    "Bearer " + userToken,
			status:    http.StatusForbidden,
			challenge: `Bearer realm="admin_users@mydomain.com", error="insufficient_scope", error_description="You are not an administrator"`,
			message:   "You are not an administrator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, tt.app, tt.header)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.challenge, resp.Header.Get(fiber.HeaderWWWAuthenticate))

			if tt.body != "" {
				assert.Equal(t, tt.body, body)
				return
			}

			var failure auth.FailureBody
			require.NoError(t, json.Unmarshal([]byte(body), &failure))
			assert.Equal(t, "fail", failure.Status)
			assert.Equal(t, tt.message, failure.Message)
		})
	}
}

func TestGuard_StoreFailure(t *testing.T) {
	healthy := newTokens(nil)
	token, err := healthy.Encode("user-id", false, time.Hour)
	require.NoError(t, err)

	app := protectedApp(jwtware.TokenRequired(auth.NewAuthenticator(newTokens(brokenStore{}))))

	resp, body := doRequest(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderWWWAuthenticate))
	assert.Contains(t, body, "Internal server error.")
}

func TestGuard_Config(t *testing.T) {
	tokens := newTokens(nil)
	authenticator := auth.NewAuthenticator(tokens)
	token, err := tokens.Encode("user-id", false, time.Hour)
	require.NoError(t, err)

	t.Run("filter skips the guard", func(t *testing.T) {
		app := fiber.New()
		app.Get("/protected", jwtware.TokenRequired(authenticator, jwtware.Config{
			Filter: func(c *fiber.Ctx) bool { return c.Query("skip") == "1" },
		}), func(c *fiber.Ctx) error { return c.SendString("open") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected?skip=1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("custom header and context key", func(t *testing.T) {
		app := fiber.New()
		app.Get("/protected", jwtware.TokenRequired(authenticator, jwtware.Config{
			Header:     "X-Access-Token",
			ContextKey: "claims",
		}), func(c *fiber.Ctx) error {
			claims, ok := auth.GetFiberClaims(c, "claims")
			if !ok {
				return c.SendStatus(http.StatusTeapot)
			}
			return c.SendString(claims.PublicID())
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-Access-Token", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("validation listener can reject", func(t *testing.T) {
		var seen *auth.Claims
		app := protectedApp(jwtware.TokenRequired(authenticator, jwtware.Config{
			ValidationListeners: []jwtware.ValidationListener{
				func(c *fiber.Ctx, claims *auth.Claims) error {
					seen = claims
					return auth.ErrTokenBlacklisted
				},
			},
		}))

		resp, _ := doRequest(t, app, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NotNil(t, seen)
		assert.Equal(t, "user-id", seen.PublicID())
	})

	t.Run("custom error handler", func(t *testing.T) {
		app := protectedApp(jwtware.TokenRequired(authenticator, jwtware.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(http.StatusTeapot).SendString(err.Error())
			},
		}))

		resp, _ := doRequest(t, app, "")
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	})

	t.Run("missing authenticator panics", func(t *testing.T) {
		assert.Panics(t, func() { jwtware.New() })
	})
}
