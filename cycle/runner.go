package cycle

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
)

// Rejection codes produced by the runner itself, on top of the validator's
// violation codes.
const (
	CodeNoPriceData           = "no_price_data"
	CodeStopBeyondLiquidation = "stop_beyond_liquidation"
	CodeInsufficientCash      = "insufficient_cash"
)

// Input is one decision cycle's worth of external data: fresh ticks and
// closed candles first, then at most one intent per instrument.
type Input struct {
	Time    time.Time
	Ticks   []market.Tick
	Candles []market.Candle
	Intents map[string]risk.Intent
}

// Rejection records an intent that was dropped and why. Rejections are
// per-instrument; one bad intent never aborts the rest of the cycle.
type Rejection struct {
	Instrument string
	Code       string
	Msg        string
}

// Result is everything one cycle produced. The caller gets mutations,
// rejections and the new snapshot back as plain data; nothing here throws.
type Result struct {
	Opened     []ledger.Position
	Closed     []ledger.Trade
	Held       []string
	Rejections []Rejection
	Snapshot   ledger.Snapshot
}

// Runner executes decision cycles against one ledger. A cycle runs
// synchronously to completion: ingest data, monitor open positions, apply
// validated intents, publish the snapshot, journal everything.
type Runner struct {
	ledger  *ledger.Ledger
	policy  risk.Policy
	candles *market.CandleStore
	monitor ledger.Monitor
	journal journal.Journal
	log     *zap.Logger
}

func NewRunner(l *ledger.Ledger, policy risk.Policy, j journal.Journal, log *zap.Logger) (*Runner, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		ledger:  l,
		policy:  policy,
		candles: market.NewCandleStore(),
		journal: j,
		log:     log,
	}, nil
}

func (r *Runner) Ledger() *ledger.Ledger { return r.ledger }

// Run executes one cycle. Exit rules for already-open positions are
// evaluated before the cycle's intents, so a stop or invalidation that
// fired on this candle wins over an explicit close intent and each position
// closes at most once per cycle.
func (r *Runner) Run(in Input) (Result, error) {
	var res Result

	for _, t := range in.Ticks {
		r.ledger.Ticks().Set(t)
	}
	for _, c := range in.Candles {
		r.candles.Set(c)
	}

	if err := r.monitorPositions(in, &res); err != nil {
		return res, err
	}
	if err := r.applyIntents(in, &res); err != nil {
		return res, err
	}

	res.Snapshot = r.ledger.PublishSnapshot(in.Time)
	if err := r.journal.RecordSnapshot(journal.NewSnapshotRecord(res.Snapshot)); err != nil {
		return res, fmt.Errorf("record snapshot: %w", err)
	}

	return res, nil
}

func (r *Runner) monitorPositions(in Input, res *Result) error {
	forced := r.monitor.EvaluateAll(r.ledger.OpenPositions(), r.candles)
	for _, fc := range forced {
		trade, err := r.ledger.Close(fc.Instrument, fc.Reason, fc.Price, in.Time)
		if err != nil {
			// The monitor evaluated a position the ledger no longer has;
			// that is a defect in this very loop.
			r.log.Error("force close failed",
				zap.String("instrument", fc.Instrument),
				zap.String("reason", string(fc.Reason)),
				zap.Error(err))
			continue
		}

		r.log.Warn("position force-closed",
			zap.String("instrument", trade.Instrument),
			zap.String("reason", string(trade.Reason)),
			zap.Float64("exit_price", trade.ExitPrice),
			zap.Float64("realized_pnl", trade.RealizedPnL))

		if err := r.journal.RecordTrade(journal.NewTradeRecord(trade)); err != nil {
			return fmt.Errorf("record trade: %w", err)
		}
		res.Closed = append(res.Closed, trade)
	}
	return nil
}

func (r *Runner) applyIntents(in Input, res *Result) error {
	instruments := make([]string, 0, len(in.Intents))
	for instr := range in.Intents {
		instruments = append(instruments, instr)
	}
	sort.Strings(instruments)

	for _, instr := range instruments {
		intent := in.Intents[instr]

		tick, err := r.ledger.Ticks().Get(instr)
		if err != nil {
			// Missing price: skip this instrument for the cycle, treat as an
			// implicit hold.
			r.reject(res, instr, CodeNoPriceData, fmt.Sprintf("no price for %s this cycle", instr))
			continue
		}

		var open *risk.OpenPosition
		if pos, ok := r.ledger.Position(instr); ok {
			open = &risk.OpenPosition{Quantity: pos.Quantity, Plan: pos.Plan}
		}

		d := risk.Evaluate(r.policy, intent, tick.Price, r.accountValue(), open)
		if d.Normalized {
			r.log.Info("normalized degenerate no_action intent",
				zap.String("instrument", instr),
				zap.Int("leverage", d.Intent.Leverage),
				zap.Float64("confidence", d.Intent.Confidence))
		}
		if !d.Allowed {
			v := d.Violations[0]
			r.reject(res, instr, v.Code, v.Msg)
			continue
		}

		switch d.Intent.Signal {
		case risk.SignalNoAction:
			// Nothing to do.

		case risk.SignalHold:
			res.Held = append(res.Held, instr)

		case risk.SignalClose:
			trade, err := r.ledger.Close(instr, ledger.ReasonManualClose, tick.Price, in.Time)
			if err != nil {
				r.logContractViolation("close", instr, err)
				continue
			}
			if err := r.journal.RecordTrade(journal.NewTradeRecord(trade)); err != nil {
				return fmt.Errorf("record trade: %w", err)
			}
			res.Closed = append(res.Closed, trade)

		case risk.SignalEntry:
			pos, err := r.ledger.Open(d.Intent, d.Side)
			switch {
			case err == nil:
				r.log.Info("position opened",
					zap.String("instrument", instr),
					zap.String("side", d.Side.String()),
					zap.Float64("entry_price", pos.EntryPrice),
					zap.Int("leverage", pos.Leverage),
					zap.Float64("margin_usd", pos.MarginUSD))
				res.Opened = append(res.Opened, pos)

			case errors.Is(err, ledger.ErrStopBeyondLiquidation):
				r.reject(res, instr, CodeStopBeyondLiquidation, err.Error())

			case errors.Is(err, ledger.ErrInsufficientCash):
				r.reject(res, instr, CodeInsufficientCash, err.Error())

			default:
				r.logContractViolation("open", instr, err)
			}
		}
	}
	return nil
}

// accountValue is the total value the cycle's risk checks are made against:
// the last published snapshot, or the initial balance before the first
// cycle has completed.
func (r *Runner) accountValue() float64 {
	if snap, ok := r.ledger.LatestSnapshot(); ok {
		return snap.TotalValue
	}
	return r.ledger.InitialBalance()
}

func (r *Runner) reject(res *Result, instr, code, msg string) {
	res.Rejections = append(res.Rejections, Rejection{Instrument: instr, Code: code, Msg: msg})
	r.log.Warn("intent rejected",
		zap.String("instrument", instr),
		zap.String("code", code),
		zap.String("msg", msg))
}

// logContractViolation records a broken internal invariant with a full
// state dump. The instrument's intent is lost for this cycle; everything
// else proceeds.
func (r *Runner) logContractViolation(op, instr string, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("instrument", instr),
		zap.Error(err),
		zap.Float64("available_cash", r.ledger.AvailableCash()),
	}
	for _, p := range r.ledger.OpenPositions() {
		fields = append(fields, zap.Any("position_"+p.Instrument, p))
	}
	if ledger.IsContractViolation(err) {
		r.log.Error("contract violation", fields...)
		return
	}
	r.log.Error("ledger operation failed", fields...)
}
