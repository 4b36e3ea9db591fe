package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsWithinThresholdAt(t *testing.T) {
	now := time.Date(2030, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		inputTime     time.Time
		thresholdExpr string
		expected      bool
		expectErr     bool
	}{
		{
			name:          "Within cool down",
			inputTime:     now.Add(-10 * time.Minute),
			thresholdExpr: "15m",
			expected:      true,
		},
		{
			name:          "Outside cool down",
			inputTime:     now.Add(-20 * time.Minute),
			thresholdExpr: "15m",
			expected:      false,
		},
		{
			name:          "At exact threshold",
			inputTime:     now.Add(-15 * time.Minute),
			thresholdExpr: "15m",
			expected:      false,
		},
		{
			name:          "Future time",
			inputTime:     now.Add(time.Hour),
			thresholdExpr: "2h",
			expected:      true,
		},
		{
			name:          "Invalid threshold expression",
			inputTime:     now,
			thresholdExpr: "soon",
			expectErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := isWithinThresholdAt(now, tt.inputTime, tt.thresholdExpr)

			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestThresholdFunctionsComplementary(t *testing.T) {
	inputs := []time.Time{
		time.Now(),
		time.Now().Add(-30 * time.Minute),
		time.Now().Add(-2 * time.Hour),
	}

	for _, input := range inputs {
		for _, threshold := range []string{"1h", "15m", CoolDownPeriod} {
			within, err := IsWithinThresholdPeriod(input, threshold)
			assert.NoError(t, err)
			outside, err := IsOutsideThresholdPeriod(input, threshold)
			assert.NoError(t, err)
			assert.NotEqual(t, within, outside)
		}
	}

	_, err := IsOutsideThresholdPeriod(time.Now(), "bad")
	assert.Error(t, err)
}
