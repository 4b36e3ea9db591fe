package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClaims(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantOK bool
	}{
		{
			name:   "claims present",
			ctx:    WithClaimsContext(context.Background(), &Claims{publicID: "user123"}),
			wantOK: true,
		},
		{
			name: "no claims",
			ctx:  context.Background(),
		},
		{
			name: "wrong type",
			ctx:  context.WithValue(context.Background(), claimsCtxKey, "not-a-claims-object"),
		},
		{
			name: "nil claims",
			ctx:  WithClaimsContext(context.Background(), nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := GetClaims(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "user123", claims.PublicID())
			}
		})
	}
}

func TestUserContext(t *testing.T) {
	user := &User{Email: "user@example.com"}

	got, ok := FromContext(WithContext(context.Background(), user))
	require.True(t, ok)
	assert.Same(t, user, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestGetFiberClaims(t *testing.T) {
	fromLocals := &Claims{publicID: "locals"}
	fromCtx := &Claims{publicID: "ctx"}

	app := fiber.New()
	app.Get("/locals", func(c *fiber.Ctx) error {
		c.Locals("custom", fromLocals)
		claims, ok := GetFiberClaims(c, "custom")
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendString(claims.PublicID())
	})
	app.Get("/ctx", func(c *fiber.Ctx) error {
		c.SetUserContext(WithClaimsContext(c.UserContext(), fromCtx))
		claims, ok := GetFiberClaims(c, "")
		if !ok {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendString(claims.PublicID())
	})
	app.Get("/none", func(c *fiber.Ctx) error {
		if _, ok := GetFiberClaims(c, ""); ok {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusNotFound)
	})

	for path, want := range map[string]string{"/locals": "locals", "/ctx": "ctx"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, want, string(body))
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/none", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
