package auth_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-widget-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeHeader(t *testing.T) {
	tests := []struct {
		kind   auth.FailureKind
		admin  bool
		header string
	}{
		{
			kind:   auth.FailureNoCredentials,
			header: `Bearer realm="registered_users@mydomain.com"`,
		},
		{
			kind:   auth.FailureNoCredentials,
			admin:  true,
			header: `Bearer realm="admin_users@mydomain.com"`,
		},
		{
			kind:   auth.FailureInvalidToken,
			header: `Bearer realm="registered_users@mydomain.com", error="invalid_token", error_description="Invalid token. Please log in again."`,
		},
		{
			kind:   auth.FailureExpired,
			header: `Bearer realm="registered_users@mydomain.com", error="invalid_token", error_description="Token expired. Please log in again."`,
		},
		{
			kind:   auth.FailureBlacklisted,
			admin:  true,
			header: `Bearer realm="admin_users@mydomain.com", error="invalid_token", error_description="Token blacklisted. Please log in again."`,
		},
		{
			kind:   auth.FailureInsufficientPrivilege,
			header: `Bearer realm="admin_users@mydomain.com", error="insufficient_scope", error_description="You are not an administrator"`,
		},
		{
			kind:   auth.FailureInsufficientPrivilege,
			admin:  true,
			header: `Bearer realm="admin_users@mydomain.com", error="insufficient_scope", error_description="You are not an administrator"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.header, auth.ChallengeHeader(tt.kind, tt.admin))
		})
	}
}

func TestFailureFor(t *testing.T) {
	assert.Equal(t, fiber.StatusUnauthorized, auth.FailureFor(auth.FailureExpired).Status)
	assert.Equal(t, fiber.StatusForbidden, auth.FailureFor(auth.FailureInsufficientPrivilege).Status)
	assert.Equal(t, "Unauthorized", auth.FailureFor(auth.FailureNoCredentials).Description)

	// unknown kinds never let a request through
	assert.Equal(t, auth.FailureFor(auth.FailureInvalidToken), auth.FailureFor(auth.FailureNone))
	assert.Equal(t, auth.FailureFor(auth.FailureInvalidToken), auth.FailureFor(auth.FailureKind(99)))
}

func TestWriteFailure(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return auth.WriteFailure(c, auth.FailureExpired, true)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t,
		`Bearer realm="admin_users@mydomain.com", error="invalid_token", error_description="Token expired. Please log in again."`,
		resp.Header.Get(fiber.HeaderWWWAuthenticate),
	)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body auth.FailureBody
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "Token expired. Please log in again.", body.Message)
}
