package ledger

import (
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
)

// ForceClose is a monitor verdict: close this instrument at this price for
// this reason. The monitor only evaluates; the ledger performs the close.
type ForceClose struct {
	Instrument string
	Reason     CloseReason
	Price      float64
}

// Monitor re-evaluates open positions against the latest closed candle.
// Exit rules fire in a fixed order and the first match wins, so a position
// lands in at most one close bucket per cycle:
//
//	liquidation -> invalidation -> stop loss -> take profit
//
// Invalidation and the threshold rules all use the candle close, matching
// "closes below/above" semantics; intra-candle wicks never trigger them.
type Monitor struct{}

// Evaluate checks one position against its instrument's latest closed
// candle.
func (Monitor) Evaluate(pos Position, candle market.Candle) (ForceClose, bool) {
	mark := candle.Close

	liquidated := (pos.Side == risk.Long && mark <= pos.LiquidationPrice) ||
		(pos.Side == risk.Short && mark >= pos.LiquidationPrice)
	if liquidated {
		return ForceClose{Instrument: pos.Instrument, Reason: ReasonLiquidation, Price: pos.LiquidationPrice}, true
	}

	if pos.Plan.Invalidation != nil && pos.Plan.Invalidation.Triggered(mark) {
		return ForceClose{Instrument: pos.Instrument, Reason: ReasonInvalidation, Price: mark}, true
	}

	stopHit := (pos.Side == risk.Long && mark <= pos.Plan.StopLoss) ||
		(pos.Side == risk.Short && mark >= pos.Plan.StopLoss)
	if stopHit {
		return ForceClose{Instrument: pos.Instrument, Reason: ReasonStopLoss, Price: pos.Plan.StopLoss}, true
	}

	targetHit := (pos.Side == risk.Long && mark >= pos.Plan.ProfitTarget) ||
		(pos.Side == risk.Short && mark <= pos.Plan.ProfitTarget)
	if targetHit {
		return ForceClose{Instrument: pos.Instrument, Reason: ReasonTakeProfit, Price: pos.Plan.ProfitTarget}, true
	}

	return ForceClose{}, false
}

// EvaluateAll runs Evaluate over every open position that has a closed
// candle this cycle. Positions without a candle are skipped for the cycle;
// missing data is never fatal.
func (m Monitor) EvaluateAll(positions []Position, candles *market.CandleStore) []ForceClose {
	var out []ForceClose
	for _, pos := range positions {
		candle, err := candles.Get(pos.Instrument)
		if err != nil {
			continue
		}
		if fc, ok := m.Evaluate(pos, candle); ok {
			out = append(out, fc)
		}
	}
	return out
}
