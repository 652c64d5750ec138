package perf

import (
	"math"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/risk"
)

// Metrics are account-level performance figures derived from the snapshot
// history and the closed-trade log. Drawdown breaches are reported as flags
// only; halting new entries on a breach is the caller's decision.
type Metrics struct {
	TotalReturnPct float64
	Sharpe         float64
	MaxDrawdown    float64 // fraction of the running peak
	WinRate        float64

	TotalTrades int
	Wins        int
	TotalPnL    float64

	FinalValue float64
	PeakValue  float64

	DailyDrawdownBreached bool
	TotalDrawdownBreached bool
}

// Compute is a pure function over ordered snapshots and trades. Every
// degenerate denominator (no snapshots, zero stdev, zero trades) yields a
// safe zero instead of an error.
func Compute(snapshots []ledger.Snapshot, trades []ledger.Trade, initial, periodsPerYear float64, policy risk.Policy) Metrics {
	var m Metrics

	if len(snapshots) > 0 {
		m.FinalValue = snapshots[len(snapshots)-1].TotalValue
		if initial > 0 {
			m.TotalReturnPct = (m.FinalValue - initial) / initial * 100
		}
		m.Sharpe = sharpe(snapshots, periodsPerYear)
		m.MaxDrawdown, m.PeakValue = maxDrawdown(snapshots)
		m.DailyDrawdownBreached = dailyDrawdownBreached(snapshots, policy.MaxDailyDrawdown)
		if policy.MaxTotalDrawdown > 0 && m.MaxDrawdown > policy.MaxTotalDrawdown {
			m.TotalDrawdownBreached = true
		}
	}

	m.TotalTrades = len(trades)
	for _, t := range trades {
		m.TotalPnL += t.RealizedPnL
		if t.RealizedPnL > 0 {
			m.Wins++
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.Wins) / float64(m.TotalTrades)
	}

	return m
}

// sharpe is mean(period returns) / stdev(period returns), annualized by
// sqrt(periodsPerYear). Zero when fewer than two snapshots exist or the
// returns never vary.
func sharpe(snapshots []ledger.Snapshot, periodsPerYear float64) float64 {
	if len(snapshots) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].TotalValue
		if prev == 0 {
			return 0
		}
		returns = append(returns, (snapshots[i].TotalValue-prev)/prev)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	stdev := math.Sqrt(variance)
	if stdev == 0 {
		return 0
	}

	return mean / stdev * math.Sqrt(periodsPerYear)
}

func maxDrawdown(snapshots []ledger.Snapshot) (dd, peak float64) {
	peak = snapshots[0].TotalValue
	for _, s := range snapshots {
		if s.TotalValue > peak {
			peak = s.TotalValue
		}
		if peak > 0 {
			if d := (peak - s.TotalValue) / peak; d > dd {
				dd = d
			}
		}
	}
	return dd, peak
}

// dailyDrawdownBreached tracks a running peak per UTC calendar day and
// reports whether any day's decline from its own peak exceeded the limit.
func dailyDrawdownBreached(snapshots []ledger.Snapshot, limit float64) bool {
	if limit <= 0 {
		return false
	}

	var day string
	var dayPeak float64
	for _, s := range snapshots {
		d := s.Time.UTC().Format("2006-01-02")
		if d != day {
			day = d
			dayPeak = s.TotalValue
			continue
		}
		if s.TotalValue > dayPeak {
			dayPeak = s.TotalValue
		}
		if dayPeak > 0 && (dayPeak-s.TotalValue)/dayPeak > limit {
			return true
		}
	}
	return false
}
