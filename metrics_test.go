package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-widget-auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics, err := auth.NewMetrics(reg)
	require.NoError(t, err)

	clock := newFixedClock()
	tokens := auth.NewTokenService(testKey, time.Hour, testIssuer, nil,
		auth.WithClock(clock.Now),
		auth.WithTokenMetrics(metrics),
	)
	a := auth.NewAuthenticator(tokens, auth.WithDecisionRecorder(metrics))

	token, err := tokens.Encode("user", false, time.Hour)
	require.NoError(t, err)

	claims, err := a.Authenticate(ctx, "Bearer "+token, false)
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, "Bearer "+token, true)
	require.Error(t, err)
	_, err = a.Authenticate(ctx, "", false)
	require.Error(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims))
	_, err = a.Authenticate(ctx, "Bearer "+token, false)
	require.Error(t, err)

	decisions := metrics.Decisions()
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("success", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("insufficient_privilege", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("no_credentials", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(decisions.WithLabelValues("blacklisted", "false")))

	n, err := testutil.GatherAndCount(reg, "widget_api_auth_tokens_issued_total", "widget_api_auth_revocations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("double registration fails", func(t *testing.T) {
		_, err := auth.NewMetrics(reg)
		assert.Error(t, err)
	})
}
