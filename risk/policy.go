package risk

import "fmt"

// Policy holds the static risk bounds every trade intent is validated
// against. It is loaded once at startup and never mutated afterwards.
type Policy struct {
	LeverageMin int
	LeverageMax int

	// MaxRiskPerTrade is the fraction of account value a single trade may
	// put at risk (0.02 = 2%).
	MaxRiskPerTrade float64

	// MinRewardRisk is the minimum (target distance / stop distance) ratio.
	MinRewardRisk float64

	// Circuit breakers, reported by perf as breach flags.
	MaxDailyDrawdown float64
	MaxTotalDrawdown float64

	// ConfidenceLeverage maps a minimum confidence score to the leverage
	// recommended at that confidence. Entries must be sorted by descending
	// confidence. Optional; LeverageFor falls back to LeverageMin.
	ConfidenceLeverage []ConfidenceLeverage
}

type ConfidenceLeverage struct {
	Confidence float64
	Leverage   int
}

// Validate fails fast on an internally inconsistent policy. A bad policy is
// a startup error, never a per-cycle one.
func (p Policy) Validate() error {
	if p.LeverageMin < 1 {
		return fmt.Errorf("risk policy: leverage_min must be >= 1, got %d", p.LeverageMin)
	}
	if p.LeverageMin > p.LeverageMax {
		return fmt.Errorf("risk policy: leverage_min %d > leverage_max %d", p.LeverageMin, p.LeverageMax)
	}
	if p.MaxRiskPerTrade <= 0 || p.MaxRiskPerTrade > 1 {
		return fmt.Errorf("risk policy: max_risk_per_trade must be in (0, 1], got %g", p.MaxRiskPerTrade)
	}
	if p.MinRewardRisk <= 0 {
		return fmt.Errorf("risk policy: min_reward_risk must be positive, got %g", p.MinRewardRisk)
	}
	if p.MaxDailyDrawdown < 0 || p.MaxDailyDrawdown > 1 {
		return fmt.Errorf("risk policy: max_daily_drawdown must be in [0, 1], got %g", p.MaxDailyDrawdown)
	}
	if p.MaxTotalDrawdown < 0 || p.MaxTotalDrawdown > 1 {
		return fmt.Errorf("risk policy: max_total_drawdown must be in [0, 1], got %g", p.MaxTotalDrawdown)
	}
	for i, cl := range p.ConfidenceLeverage {
		if cl.Leverage < p.LeverageMin || cl.Leverage > p.LeverageMax {
			return fmt.Errorf("risk policy: confidence_leverage[%d] leverage %d outside [%d, %d]",
				i, cl.Leverage, p.LeverageMin, p.LeverageMax)
		}
		if i > 0 && cl.Confidence >= p.ConfidenceLeverage[i-1].Confidence {
			return fmt.Errorf("risk policy: confidence_leverage must be sorted by descending confidence")
		}
	}
	return nil
}

// LeverageFor returns the leverage recommended for a confidence score using
// the policy's confidence mapping. The first entry whose confidence the
// score meets wins; with no mapping (or a score below every entry) the
// policy minimum applies.
func (p Policy) LeverageFor(confidence float64) int {
	for _, cl := range p.ConfidenceLeverage {
		if confidence >= cl.Confidence {
			return cl.Leverage
		}
	}
	return p.LeverageMin
}
