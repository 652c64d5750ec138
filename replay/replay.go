package replay

import (
	"fmt"

	"github.com/rustyeddy/papertrade/cycle"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/perf"
	"github.com/rustyeddy/papertrade/risk"
)

// Replay drives the cycle runner over a recorded candle dataset with
// scripted intents: one decision cycle per candle row.
type Replay struct {
	Runner         *cycle.Runner
	Feed           *CandleFeed
	Script         *Script
	Policy         risk.Policy
	PeriodsPerYear float64
}

// Run executes the replay loop to the end of the dataset and returns the
// aggregated performance metrics.
func (r *Replay) Run() (perf.Metrics, error) {
	if r.Runner == nil {
		return perf.Metrics{}, fmt.Errorf("replay: Runner is required")
	}
	if r.Feed == nil {
		return perf.Metrics{}, fmt.Errorf("replay: Feed is required")
	}
	defer r.Feed.Close()

	var snapshots []ledger.Snapshot

	for {
		c, ok, err := r.Feed.Next()
		if err != nil {
			return perf.Metrics{}, err
		}
		if !ok {
			break
		}

		in := cycle.Input{
			Time:    c.Time,
			Ticks:   []market.Tick{{Instrument: c.Instrument, Price: c.Close, Time: c.Time}},
			Candles: []market.Candle{c},
			Intents: map[string]risk.Intent{},
		}
		if r.Script != nil {
			if intent, found := r.Script.Due(c.Instrument, c.Time); found {
				in.Intents[c.Instrument] = intent
			}
		}

		res, err := r.Runner.Run(in)
		if err != nil {
			return perf.Metrics{}, err
		}
		snapshots = append(snapshots, res.Snapshot)
	}

	trades := r.Runner.Ledger().Trades()
	initial := r.Runner.Ledger().InitialBalance()

	return perf.Compute(snapshots, trades, initial, r.PeriodsPerYear, r.Policy), nil
}
