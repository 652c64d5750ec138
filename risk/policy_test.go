package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Policy)
		ok     bool
	}{
		{
			name:   "valid",
			mutate: func(p *Policy) {},
			ok:     true,
		},
		{
			name:   "leverage_min_zero",
			mutate: func(p *Policy) { p.LeverageMin = 0 },
		},
		{
			name:   "leverage_min_above_max",
			mutate: func(p *Policy) { p.LeverageMin = 20 },
		},
		{
			name:   "risk_fraction_zero",
			mutate: func(p *Policy) { p.MaxRiskPerTrade = 0 },
		},
		{
			name:   "risk_fraction_above_one",
			mutate: func(p *Policy) { p.MaxRiskPerTrade = 1.5 },
		},
		{
			name:   "reward_risk_zero",
			mutate: func(p *Policy) { p.MinRewardRisk = 0 },
		},
		{
			name:   "daily_drawdown_negative",
			mutate: func(p *Policy) { p.MaxDailyDrawdown = -0.1 },
		},
		{
			name:   "total_drawdown_above_one",
			mutate: func(p *Policy) { p.MaxTotalDrawdown = 1.1 },
		},
		{
			name: "confidence_mapping_leverage_out_of_range",
			mutate: func(p *Policy) {
				p.ConfidenceLeverage = []ConfidenceLeverage{{Confidence: 0.9, Leverage: 50}}
			},
		},
		{
			name: "confidence_mapping_unsorted",
			mutate: func(p *Policy) {
				p.ConfidenceLeverage = []ConfidenceLeverage{
					{Confidence: 0.5, Leverage: 2},
					{Confidence: 0.9, Leverage: 10},
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := testPolicy()
			tt.mutate(&p)

			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLeverageFor(t *testing.T) {
	t.Parallel()

	p := testPolicy()
	p.ConfidenceLeverage = []ConfidenceLeverage{
		{Confidence: 0.9, Leverage: 10},
		{Confidence: 0.75, Leverage: 5},
		{Confidence: 0.5, Leverage: 2},
	}

	assert.Equal(t, 10, p.LeverageFor(0.95))
	assert.Equal(t, 10, p.LeverageFor(0.9))
	assert.Equal(t, 5, p.LeverageFor(0.8))
	assert.Equal(t, 2, p.LeverageFor(0.5))
	assert.Equal(t, p.LeverageMin, p.LeverageFor(0.4), "below every tier falls back to the minimum")
}

func TestLeverageForNoMapping(t *testing.T) {
	t.Parallel()

	p := testPolicy()
	assert.Equal(t, p.LeverageMin, p.LeverageFor(0.99))
}

func TestPositionSize(t *testing.T) {
	t.Parallel()

	// Risking $200 with a $50 stop distance buys 4 units.
	assert.InDelta(t, 4.0, PositionSize(200, 1000, 950, 5, 100000), 1e-9)

	// Same numbers short side.
	assert.InDelta(t, 4.0, PositionSize(200, 1000, 1050, 5, 100000), 1e-9)

	// Margin cap: qty 4 at entry 1000 lev 1 needs $4000 margin, but 30% of
	// a $10k account is $3000, so the size shrinks to 3.
	assert.InDelta(t, 3.0, PositionSize(200, 1000, 950, 1, 10000), 1e-9)

	// Degenerate inputs size to zero.
	assert.Zero(t, PositionSize(200, 1000, 1000, 5, 10000))
	assert.Zero(t, PositionSize(200, 0, 950, 5, 10000))
	assert.Zero(t, PositionSize(200, 1000, 950, 0, 10000))
}
