package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		LeverageMin:      1,
		LeverageMax:      15,
		MaxRiskPerTrade:  0.02,
		MinRewardRisk:    1.5,
		MaxDailyDrawdown: 0.05,
		MaxTotalDrawdown: 0.20,
	}
}

func ethEntry() Intent {
	return Intent{
		Instrument: "ETH",
		Signal:     SignalEntry,
		Quantity:   4.87,
		Leverage:   15,
		Confidence: 0.8,
		RiskUSD:    150,
		Plan: ExitPlan{
			ProfitTarget: 4227.35,
			StopLoss:     3714.95,
		},
	}
}

func TestEvaluateEntryAccepted(t *testing.T) {
	t.Parallel()

	d := Evaluate(testPolicy(), ethEntry(), 3844.03, 10000, nil)

	require.True(t, d.Allowed, "violations: %v", d.Violations)
	assert.Equal(t, Long, d.Side)
	assert.InDelta(t, 2.97, d.RewardRisk, 0.01)
}

func TestEvaluateEntryRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Intent)
		price  float64
		open   *OpenPosition
		code   string
	}{
		{
			name:   "leverage_above_max",
			mutate: func(i *Intent) { i.Leverage = 20 },
			price:  3844.03,
			code:   CodeLeverageOutOfRange,
		},
		{
			name:   "leverage_below_min",
			mutate: func(i *Intent) { i.Leverage = 0 },
			price:  3844.03,
			code:   CodeLeverageOutOfRange,
		},
		{
			name:   "confidence_too_low",
			mutate: func(i *Intent) { i.Confidence = 0.3 },
			price:  3844.03,
			code:   CodeConfidenceOutOfRange,
		},
		{
			name:   "confidence_too_high",
			mutate: func(i *Intent) { i.Confidence = 1.2 },
			price:  3844.03,
			code:   CodeConfidenceOutOfRange,
		},
		{
			name:   "risk_exceeds_account_fraction",
			mutate: func(i *Intent) { i.RiskUSD = 500 }, // max is 2% of 10k = 200
			price:  3844.03,
			code:   CodeRiskTooHigh,
		},
		{
			name:   "negative_risk",
			mutate: func(i *Intent) { i.RiskUSD = -1 },
			price:  3844.03,
			code:   CodeRiskNegative,
		},
		{
			name:   "zero_quantity",
			mutate: func(i *Intent) { i.Quantity = 0 },
			price:  3844.03,
			code:   CodeBadQuantity,
		},
		{
			name:   "missing_stop",
			mutate: func(i *Intent) { i.Plan.StopLoss = 0 },
			price:  3844.03,
			code:   CodeMissingExitPlan,
		},
		{
			name:   "long_stop_above_price",
			mutate: func(i *Intent) { i.Plan.StopLoss = 3900 },
			price:  3844.03,
			code:   CodeStopOnWrongSide,
		},
		{
			name: "short_stop_below_price",
			mutate: func(i *Intent) {
				i.Plan.ProfitTarget = 3500
				i.Plan.StopLoss = 3700
			},
			price: 3844.03,
			code:  CodeStopOnWrongSide,
		},
		{
			name:   "target_equals_price",
			mutate: func(i *Intent) { i.Plan.ProfitTarget = 3844.03 },
			price:  3844.03,
			code:   CodeTargetEqualsPrice,
		},
		{
			name:   "reward_risk_too_low",
			mutate: func(i *Intent) { i.Plan.ProfitTarget = 3900 }, // RR ~0.43
			price:  3844.03,
			code:   CodeRewardRiskTooLow,
		},
		{
			name:   "already_open",
			mutate: func(i *Intent) {},
			price:  3844.03,
			open:   &OpenPosition{Quantity: 1},
			code:   CodePositionAlreadyOpen,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			intent := ethEntry()
			tt.mutate(&intent)

			d := Evaluate(testPolicy(), intent, tt.price, 10000, tt.open)

			require.False(t, d.Allowed)
			require.Len(t, d.Violations, 1, "rejections carry exactly the first violated rule")
			assert.Equal(t, tt.code, d.Violations[0].Code)
		})
	}
}

func TestEvaluateShortEntryAccepted(t *testing.T) {
	t.Parallel()

	intent := ethEntry()
	intent.Plan.ProfitTarget = 3500
	intent.Plan.StopLoss = 3950

	d := Evaluate(testPolicy(), intent, 3844.03, 10000, nil)

	require.True(t, d.Allowed, "violations: %v", d.Violations)
	assert.Equal(t, Short, d.Side)
	// reward 344.03 / risk 105.97
	assert.InDelta(t, 3.25, d.RewardRisk, 0.01)
}

func TestEvaluateRiskTolerance(t *testing.T) {
	t.Parallel()

	// Max risk is exactly 200; a few cents over is float noise, not a breach.
	intent := ethEntry()
	intent.RiskUSD = 200.05

	d := Evaluate(testPolicy(), intent, 3844.03, 10000, nil)
	assert.True(t, d.Allowed)
}

func TestEvaluateNoActionNormalization(t *testing.T) {
	t.Parallel()

	intent := Intent{Instrument: "BTC", Signal: SignalNoAction, Leverage: 0, Confidence: 0}

	d := Evaluate(testPolicy(), intent, 50000, 10000, nil)

	require.True(t, d.Allowed)
	assert.True(t, d.Normalized)
	assert.Equal(t, 1, d.Intent.Leverage)
	assert.Equal(t, 0.5, d.Intent.Confidence)
}

func TestEvaluateNoActionAlreadySane(t *testing.T) {
	t.Parallel()

	intent := Intent{Instrument: "BTC", Signal: SignalNoAction, Leverage: 3, Confidence: 0.7}

	d := Evaluate(testPolicy(), intent, 50000, 10000, nil)

	require.True(t, d.Allowed)
	assert.False(t, d.Normalized)
	assert.Equal(t, 3, d.Intent.Leverage)
	assert.Equal(t, 0.7, d.Intent.Confidence)
}

func TestEvaluateHold(t *testing.T) {
	t.Parallel()

	plan := ExitPlan{ProfitTarget: 4227.35, StopLoss: 3714.95}
	open := &OpenPosition{Quantity: 4.87, Plan: plan}

	hold := Intent{Instrument: "ETH", Signal: SignalHold, Quantity: 4.87, Plan: plan}

	d := Evaluate(testPolicy(), hold, 3844.03, 10000, open)
	assert.True(t, d.Allowed)

	// No open position.
	d = Evaluate(testPolicy(), hold, 3844.03, 10000, nil)
	require.False(t, d.Allowed)
	assert.Equal(t, CodeNoOpenPosition, d.Violations[0].Code)

	// Hold may not change quantity.
	mutated := hold
	mutated.Quantity = 5
	d = Evaluate(testPolicy(), mutated, 3844.03, 10000, open)
	require.False(t, d.Allowed)
	assert.Equal(t, CodeHoldMutatesPosition, d.Violations[0].Code)

	// Hold may not change the exit plan.
	mutated = hold
	mutated.Plan.StopLoss = 3700
	d = Evaluate(testPolicy(), mutated, 3844.03, 10000, open)
	require.False(t, d.Allowed)
	assert.Equal(t, CodeHoldMutatesPosition, d.Violations[0].Code)
}

func TestEvaluateClose(t *testing.T) {
	t.Parallel()

	intent := Intent{Instrument: "ETH", Signal: SignalClose}

	d := Evaluate(testPolicy(), intent, 3844.03, 10000, &OpenPosition{Quantity: 1})
	assert.True(t, d.Allowed)

	d = Evaluate(testPolicy(), intent, 3844.03, 10000, nil)
	require.False(t, d.Allowed)
	assert.Equal(t, CodeNoOpenPosition, d.Violations[0].Code)
}
