package replay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrade/risk"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScript(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `
steps:
  - at: 2025-08-01T12:00:00Z
    instrument: ETH
    signal: entry
    quantity: 4.87
    leverage: 15
    confidence: 0.8
    risk_usd: 150
    profit_target: 4227.35
    stop_loss: 3714.95
    invalidation: "If the price closes below 3800 on a 3-minute candle"
  - at: 2025-08-01T13:00:00Z
    instrument: ETH
    signal: close_position
`)
	s, err := LoadScript(path)
	require.NoError(t, err)
	require.Len(t, s.Steps, 2)

	intent, found := s.Due("ETH", time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	require.True(t, found)
	assert.Equal(t, risk.SignalEntry, intent.Signal)
	assert.Equal(t, 4.87, intent.Quantity)
	require.NotNil(t, intent.Plan.Invalidation)
	assert.Equal(t, risk.Condition{Op: risk.ClosesBelow, Threshold: 3800}, *intent.Plan.Invalidation)

	// The close step is not due yet.
	_, found = s.Due("ETH", time.Date(2025, 8, 1, 12, 30, 0, 0, time.UTC))
	assert.False(t, found)

	intent, found = s.Due("ETH", time.Date(2025, 8, 1, 13, 0, 0, 0, time.UTC))
	require.True(t, found)
	assert.Equal(t, risk.SignalClose, intent.Signal)
}

func TestDueLatestWins(t *testing.T) {
	t.Parallel()

	path := writeScript(t, `
steps:
  - at: 2025-08-01T12:00:00Z
    instrument: ETH
    signal: no_action
  - at: 2025-08-01T12:05:00Z
    instrument: ETH
    signal: close_position
  - at: 2025-08-01T12:05:00Z
    instrument: BTC
    signal: no_action
`)
	s, err := LoadScript(path)
	require.NoError(t, err)

	// Both ETH steps are due; the later one wins and both are consumed.
	intent, found := s.Due("ETH", time.Date(2025, 8, 1, 12, 10, 0, 0, time.UTC))
	require.True(t, found)
	assert.Equal(t, risk.SignalClose, intent.Signal)

	_, found = s.Due("ETH", time.Date(2025, 8, 1, 12, 10, 0, 0, time.UTC))
	assert.False(t, found, "consumed steps never fire twice")

	// The BTC step is untouched.
	_, found = s.Due("BTC", time.Date(2025, 8, 1, 12, 10, 0, 0, time.UTC))
	assert.True(t, found)
}

func TestLoadScriptErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yml  string
	}{
		{
			name: "unknown_signal",
			yml: `
steps:
  - at: 2025-08-01T12:00:00Z
    instrument: ETH
    signal: yolo
`,
		},
		{
			name: "missing_instrument",
			yml: `
steps:
  - at: 2025-08-01T12:00:00Z
    signal: entry
`,
		},
		{
			name: "missing_time",
			yml: `
steps:
  - instrument: ETH
    signal: entry
`,
		},
		{
			name: "bad_invalidation_text",
			yml: `
steps:
  - at: 2025-08-01T12:00:00Z
    instrument: ETH
    signal: entry
    invalidation: "RSI drops under 30"
`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeScript(t, tt.yml)
			_, err := LoadScript(path)
			assert.Error(t, err)
		})
	}
}
