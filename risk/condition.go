package risk

import (
	"fmt"
	"strconv"
	"strings"
)

// CondOp is an invalidation operator. Conditions only fire on closed
// candles, which is what "closes below/above" means.
type CondOp int

const (
	ClosesBelow CondOp = iota
	ClosesAbove
)

func (op CondOp) String() string {
	if op == ClosesAbove {
		return "closes_above"
	}
	return "closes_below"
}

// Condition is a structured invalidation rule: force an exit when a closed
// candle crosses the threshold. It is independent of the stop loss and is
// checked before it.
type Condition struct {
	Op        CondOp
	Threshold float64
}

// Triggered reports whether a candle close fires the condition.
func (c Condition) Triggered(close float64) bool {
	if c.Op == ClosesBelow {
		return close < c.Threshold
	}
	return close > c.Threshold
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %g", c.Op, c.Threshold)
}

// ParseCondition translates the narrow free-text grammar used by intent
// producers into a structured Condition:
//
//	"If the price closes below 3800 on a 3-minute candle" -> closes_below 3800
//	"closes above 4200"                                   -> closes_above 4200
//
// Only "closes below N" and "closes above N" are understood. Anything
// richer (time windows, multi-clause) must be added to this grammar
// explicitly, not guessed at.
func ParseCondition(text string) (Condition, error) {
	lower := strings.ToLower(text)

	var op CondOp
	var rest string
	switch {
	case strings.Contains(lower, "closes below"):
		op = ClosesBelow
		rest = lower[strings.Index(lower, "closes below")+len("closes below"):]
	case strings.Contains(lower, "closes above"):
		op = ClosesAbove
		rest = lower[strings.Index(lower, "closes above")+len("closes above"):]
	default:
		return Condition{}, fmt.Errorf("unsupported invalidation condition %q", text)
	}

	// The threshold is the first number after the operator; trailing prose
	// ("on a 3-minute candle") is ignored.
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Condition{}, fmt.Errorf("invalidation condition %q has no threshold", text)
	}
	raw := strings.Trim(fields[0], "$,.")
	raw = strings.ReplaceAll(raw, ",", "")
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Condition{}, fmt.Errorf("invalidation condition %q: bad threshold %q: %w", text, fields[0], err)
	}
	if threshold <= 0 {
		return Condition{}, fmt.Errorf("invalidation condition %q: threshold must be positive", text)
	}

	return Condition{Op: op, Threshold: threshold}, nil
}
