package risk

import "fmt"

// Signal is the closed set of actions an intent may request. Using a typed
// enum instead of raw strings makes a missing case a compile-time problem.
type Signal int

const (
	SignalNoAction Signal = iota
	SignalEntry
	SignalHold
	SignalClose
)

func (s Signal) String() string {
	switch s {
	case SignalNoAction:
		return "no_action"
	case SignalEntry:
		return "entry"
	case SignalHold:
		return "hold"
	case SignalClose:
		return "close_position"
	}
	return fmt.Sprintf("Signal(%d)", int(s))
}

func ParseSignal(s string) (Signal, error) {
	switch s {
	case "no_action", "":
		return SignalNoAction, nil
	case "entry":
		return SignalEntry, nil
	case "hold":
		return SignalHold, nil
	case "close_position":
		return SignalClose, nil
	}
	return 0, fmt.Errorf("unknown signal %q", s)
}

// Side of an open exposure. Direction is never stated explicitly by the
// intent producer; it is inferred from where the profit target sits relative
// to the current price.
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// ExitPlan is the (profit target, stop loss, invalidation condition) triple
// governing how a position may close. Copied verbatim onto the position from
// the intent that opened it.
type ExitPlan struct {
	ProfitTarget float64
	StopLoss     float64
	Invalidation *Condition
}

// Equal reports whether two plans are identical, treating the invalidation
// condition structurally. Hold intents must carry the open position's plan
// unchanged.
func (e ExitPlan) Equal(o ExitPlan) bool {
	if e.ProfitTarget != o.ProfitTarget || e.StopLoss != o.StopLoss {
		return false
	}
	if (e.Invalidation == nil) != (o.Invalidation == nil) {
		return false
	}
	if e.Invalidation != nil && *e.Invalidation != *o.Invalidation {
		return false
	}
	return true
}

// Intent is a proposed trade for one instrument, produced upstream (model,
// strategy, script) and validated here before it may touch the ledger.
type Intent struct {
	Instrument string
	Signal     Signal
	Quantity   float64
	Leverage   int
	Confidence float64
	RiskUSD    float64
	Plan       ExitPlan
}
