package risk

import "math"

// maxMarginFraction caps the margin of a single trade at 30% of account
// value; oversized positions are scaled down rather than rejected.
const maxMarginFraction = 0.30

// PositionSize converts a dollar risk budget into a quantity: the size that
// loses riskUSD if the stop is hit. When accountValue is positive the
// required margin is capped at 30% of it and the size reduced to fit.
func PositionSize(riskUSD, entry, stop float64, leverage int, accountValue float64) float64 {
	riskPerUnit := math.Abs(entry - stop)
	if riskPerUnit == 0 || entry <= 0 || leverage < 1 {
		return 0
	}

	qty := riskUSD / riskPerUnit

	if accountValue > 0 {
		maxMargin := accountValue * maxMarginFraction
		margin := qty * entry / float64(leverage)
		if margin > maxMargin {
			qty = maxMargin * float64(leverage) / entry
		}
	}

	return qty
}
