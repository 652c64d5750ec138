package ledger

import (
	"time"

	"github.com/rustyeddy/papertrade/risk"
)

// Position is an open simulated leveraged exposure to one instrument. At
// most one position per instrument is open at a time.
type Position struct {
	ID         string
	Instrument string
	Side       risk.Side
	Quantity   float64
	EntryPrice float64
	Leverage   int

	NotionalUSD      float64
	MarginUSD        float64
	LiquidationPrice float64
	EntryFee         float64

	Plan       risk.ExitPlan
	Confidence float64
	RiskUSD    float64
	OpenedAt   time.Time
}

// UnrealizedPnL is always computed fresh from the given mark price, never
// cached on the position.
func (p Position) UnrealizedPnL(price float64) float64 {
	return float64(p.Side) * (price - p.EntryPrice) * p.Quantity
}

// CloseReason identifies which exit rule destroyed a position.
type CloseReason string

const (
	ReasonTakeProfit   CloseReason = "take_profit"
	ReasonStopLoss     CloseReason = "stop_loss"
	ReasonInvalidation CloseReason = "invalidation"
	ReasonManualClose  CloseReason = "manual_close"
	ReasonLiquidation  CloseReason = "liquidation"
)

// Bucket folds liquidation into stop_loss for reporting; all other reasons
// map to themselves.
func (r CloseReason) Bucket() CloseReason {
	if r == ReasonLiquidation {
		return ReasonStopLoss
	}
	return r
}

// Trade is the immutable record of a closed position; the trade history is
// append-only.
type Trade struct {
	Position

	ExitPrice   float64
	ExitFee     float64
	RealizedPnL float64
	PnLPercent  float64
	Reason      CloseReason
	Duration    time.Duration
	ClosedAt    time.Time
}
