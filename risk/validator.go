package risk

import "fmt"

// Violation codes. These are stable identifiers carried on rejection logs
// and asserted by tests; messages are for humans only.
const (
	CodeLeverageOutOfRange   = "leverage_out_of_range"
	CodeConfidenceOutOfRange = "confidence_out_of_range"
	CodeRiskTooHigh          = "risk_too_high"
	CodeRiskNegative         = "risk_negative"
	CodeRewardRiskTooLow     = "reward_risk_too_low"
	CodeBadQuantity          = "bad_quantity"
	CodeMissingExitPlan      = "missing_exit_plan"
	CodeStopOnWrongSide      = "stop_on_wrong_side"
	CodeTargetEqualsPrice    = "target_equals_price"
	CodePositionAlreadyOpen  = "position_already_open"
	CodeNoOpenPosition       = "no_open_position"
	CodeHoldMutatesPosition  = "hold_mutates_position"
)

type Violation struct {
	Code string
	Msg  string
}

// Decision is the outcome of validating one intent. Rejections carry the
// first violated rule, not a generic failure.
type Decision struct {
	Allowed    bool
	Violations []Violation

	// Intent is the (possibly normalized) intent to apply when Allowed.
	Intent Intent

	// Side is the inferred direction; meaningful only for accepted entries.
	Side Side

	// RewardRisk is the planned reward/risk ratio for entries.
	RewardRisk float64

	// Normalized reports that degenerate no_action fields were coerced to
	// policy minimums, so callers can log that it happened.
	Normalized bool
}

func (d *Decision) reject(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// OpenPosition is the slice of ledger state the validator needs to judge
// hold/close/entry intents; nil means no position is open.
type OpenPosition struct {
	Quantity float64
	Plan     ExitPlan
}

// riskTolerance absorbs float noise on the max-risk comparison. Upstream
// producers compute risk_usd from the same account value a beat earlier.
const riskTolerance = 0.1

// Evaluate checks an intent against the policy and the data-model
// invariants. It is a pure decision function: the only "mutation" is the
// no_action normalization, returned on the decision rather than applied in
// place. Rules short-circuit on the first failure.
func Evaluate(p Policy, intent Intent, currentPrice, accountValue float64, open *OpenPosition) Decision {
	d := Decision{Allowed: true, Intent: intent}

	switch intent.Signal {
	case SignalNoAction:
		// Degenerate "no trade" payloads (leverage 0, confidence 0) are
		// normalized so they never violate downstream invariants.
		if intent.Leverage <= 0 {
			d.Intent.Leverage = p.LeverageMin
			d.Normalized = true
		}
		if intent.Confidence <= 0 {
			d.Intent.Confidence = 0.5
			d.Normalized = true
		}
		return d

	case SignalHold:
		if open == nil {
			d.reject(CodeNoOpenPosition, fmt.Sprintf("hold for %s with no open position", intent.Instrument))
			return d
		}
		if intent.Quantity != open.Quantity || !intent.Plan.Equal(open.Plan) {
			d.reject(CodeHoldMutatesPosition,
				fmt.Sprintf("hold for %s must carry the open position's quantity and exit plan unchanged", intent.Instrument))
		}
		return d

	case SignalClose:
		if open == nil {
			d.reject(CodeNoOpenPosition, fmt.Sprintf("close_position for %s with no open position", intent.Instrument))
		}
		return d
	}

	// Entry.
	if open != nil {
		d.reject(CodePositionAlreadyOpen, fmt.Sprintf("entry for %s while a position is already open", intent.Instrument))
		return d
	}
	if intent.Quantity <= 0 {
		d.reject(CodeBadQuantity, fmt.Sprintf("quantity must be positive, got %g", intent.Quantity))
		return d
	}
	if intent.Leverage < p.LeverageMin || intent.Leverage > p.LeverageMax {
		d.reject(CodeLeverageOutOfRange,
			fmt.Sprintf("leverage %d outside allowed range [%d, %d]", intent.Leverage, p.LeverageMin, p.LeverageMax))
		return d
	}
	if intent.Confidence < 0.5 || intent.Confidence > 1.0 {
		d.reject(CodeConfidenceOutOfRange,
			fmt.Sprintf("confidence %.2f outside valid range [0.5, 1.0]", intent.Confidence))
		return d
	}
	if intent.RiskUSD < 0 {
		d.reject(CodeRiskNegative, fmt.Sprintf("risk_usd must be >= 0, got %g", intent.RiskUSD))
		return d
	}
	maxRisk := p.MaxRiskPerTrade * accountValue
	if intent.RiskUSD > maxRisk+riskTolerance {
		d.reject(CodeRiskTooHigh,
			fmt.Sprintf("risk $%.2f exceeds max $%.2f (%.1f%% of account)",
				intent.RiskUSD, maxRisk, p.MaxRiskPerTrade*100))
		return d
	}
	if intent.Plan.StopLoss <= 0 || intent.Plan.ProfitTarget <= 0 {
		d.reject(CodeMissingExitPlan, "entry requires positive stop_loss and profit_target")
		return d
	}

	// Direction is implied by the target's position relative to price.
	var riskDist, rewardDist float64
	switch {
	case intent.Plan.ProfitTarget > currentPrice:
		d.Side = Long
		if intent.Plan.StopLoss >= currentPrice {
			d.reject(CodeStopOnWrongSide,
				fmt.Sprintf("long: stop %g must be below price %g", intent.Plan.StopLoss, currentPrice))
			return d
		}
		riskDist = currentPrice - intent.Plan.StopLoss
		rewardDist = intent.Plan.ProfitTarget - currentPrice

	case intent.Plan.ProfitTarget < currentPrice:
		d.Side = Short
		if intent.Plan.StopLoss <= currentPrice {
			d.reject(CodeStopOnWrongSide,
				fmt.Sprintf("short: stop %g must be above price %g", intent.Plan.StopLoss, currentPrice))
			return d
		}
		riskDist = intent.Plan.StopLoss - currentPrice
		rewardDist = currentPrice - intent.Plan.ProfitTarget

	default:
		d.reject(CodeTargetEqualsPrice, "profit target cannot equal current price")
		return d
	}

	d.RewardRisk = rewardDist / riskDist
	if d.RewardRisk < p.MinRewardRisk {
		d.reject(CodeRewardRiskTooLow,
			fmt.Sprintf("reward/risk %.2f below minimum %.2f (%s: entry=%.2f sl=%.2f tp=%.2f)",
				d.RewardRisk, p.MinRewardRisk, d.Side, currentPrice, intent.Plan.StopLoss, intent.Plan.ProfitTarget))
		return d
	}

	return d
}
