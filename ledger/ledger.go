package ledger

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/pkg/id"
	"github.com/rustyeddy/papertrade/risk"
)

// Config holds the execution-model parameters of the simulated exchange.
type Config struct {
	InitialBalance float64

	// Slippage is applied to every fill, with the sign adverse to the
	// trader's direction.
	Slippage float64

	MakerFee float64
	TakerFee float64

	// MaintenanceMargin is the exchange maintenance-margin fraction used in
	// the liquidation price formula.
	MaintenanceMargin float64
}

// DefaultConfig mirrors typical perp-exchange fee tiers.
func DefaultConfig(balance float64) Config {
	return Config{
		InitialBalance:    balance,
		Slippage:          0.001,
		MakerFee:          0.0002,
		TakerFee:          0.0004,
		MaintenanceMargin: 0.004,
	}
}

// Ledger is the sole owner of position, trade, and cash state. All
// mutations happen under one writer lock during a decision cycle; readers
// use the snapshot published at the end of each cycle and never observe a
// half-applied cycle.
type Ledger struct {
	mu        sync.Mutex
	cfg       Config
	cash      float64
	positions map[string]*Position
	trades    []Trade
	ticks     *market.TickStore

	snapshot atomic.Pointer[Snapshot]
}

func New(cfg Config) *Ledger {
	return &Ledger{
		cfg:       cfg,
		cash:      cfg.InitialBalance,
		positions: make(map[string]*Position),
		ticks:     market.NewTickStore(),
	}
}

func (l *Ledger) Config() Config           { return l.cfg }
func (l *Ledger) Ticks() *market.TickStore { return l.ticks }
func (l *Ledger) InitialBalance() float64  { return l.cfg.InitialBalance }

// AvailableCash is the free cash not posted as margin.
func (l *Ledger) AvailableCash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Position returns a copy of the open position for an instrument, if any.
func (l *Ledger) Position(instr string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.positions[instr]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// OpenPositions returns copies of all open positions, ordered by instrument
// so cycle evaluation is deterministic.
func (l *Ledger) OpenPositions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })
	return out
}

// Trades returns a copy of the closed-trade history in close order.
func (l *Ledger) Trades() []Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Open creates a position from an accepted entry intent. The fill price is
// the latest tick moved against the trader by the slippage fraction; the
// taker fee and the margin are debited from cash. The validator has already
// gated the intent, so an existing position here is a contract violation.
func (l *Ledger) Open(intent risk.Intent, side risk.Side) (Position, error) {
	tick, err := l.ticks.Get(intent.Instrument)
	if err != nil {
		return Position{}, fmt.Errorf("open %s: %w", intent.Instrument, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.positions[intent.Instrument]; exists {
		return Position{}, &ContractError{Op: "open", Instrument: intent.Instrument,
			Msg: "position already open"}
	}

	fill := tick.Price * (1 + float64(side)*l.cfg.Slippage)
	notional := intent.Quantity * fill
	fee := notional * l.cfg.TakerFee
	margin := notional / float64(intent.Leverage)

	liq := liquidationPrice(side, fill, intent.Leverage, l.cfg.MaintenanceMargin)
	if side == risk.Long && intent.Plan.StopLoss <= liq {
		return Position{}, fmt.Errorf("open %s: stop %g vs liquidation %g at %dx: %w",
			intent.Instrument, intent.Plan.StopLoss, liq, intent.Leverage, ErrStopBeyondLiquidation)
	}
	if side == risk.Short && intent.Plan.StopLoss >= liq {
		return Position{}, fmt.Errorf("open %s: stop %g vs liquidation %g at %dx: %w",
			intent.Instrument, intent.Plan.StopLoss, liq, intent.Leverage, ErrStopBeyondLiquidation)
	}

	if l.cash < margin+fee {
		return Position{}, fmt.Errorf("open %s: need $%.2f margin + $%.2f fee, have $%.2f: %w",
			intent.Instrument, margin, fee, l.cash, ErrInsufficientCash)
	}

	pos := &Position{
		ID:               id.New(),
		Instrument:       intent.Instrument,
		Side:             side,
		Quantity:         intent.Quantity,
		EntryPrice:       fill,
		Leverage:         intent.Leverage,
		NotionalUSD:      notional,
		MarginUSD:        margin,
		LiquidationPrice: liq,
		EntryFee:         fee,
		Plan:             intent.Plan,
		Confidence:       intent.Confidence,
		RiskUSD:          intent.RiskUSD,
		OpenedAt:         tick.Time,
	}

	l.cash -= margin + fee
	l.positions[intent.Instrument] = pos

	return *pos, nil
}

// Close destroys the open position for an instrument and appends the
// resulting trade. The exit fill gets the same adverse slippage and taker
// fee as the entry, except for liquidations, which execute exactly at the
// liquidation price with the loss capped at the posted margin.
func (l *Ledger) Close(instr string, reason CloseReason, price float64, at time.Time) (Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[instr]
	if !ok {
		return Trade{}, &ContractError{Op: "close", Instrument: instr, Msg: "no open position"}
	}

	var exit float64
	if reason == ReasonLiquidation {
		exit = pos.LiquidationPrice
	} else {
		// Closing a long is a sell, closing a short is a buy; slippage is
		// adverse either way.
		exit = price * (1 - float64(pos.Side)*l.cfg.Slippage)
	}

	exitFee := pos.Quantity * exit * l.cfg.TakerFee
	realized := float64(pos.Side)*(exit-pos.EntryPrice)*pos.Quantity - pos.EntryFee - exitFee

	if reason == ReasonLiquidation && realized < -pos.MarginUSD {
		realized = -pos.MarginUSD
	}

	trade := Trade{
		Position:    *pos,
		ExitPrice:   exit,
		ExitFee:     exitFee,
		RealizedPnL: realized,
		PnLPercent:  realized / pos.MarginUSD * 100,
		Reason:      reason,
		Duration:    at.Sub(pos.OpenedAt),
		ClosedAt:    at,
	}

	l.cash += pos.MarginUSD + realized
	delete(l.positions, instr)
	l.trades = append(l.trades, trade)

	return trade, nil
}

func liquidationPrice(side risk.Side, entry float64, leverage int, maintenance float64) float64 {
	if side == risk.Long {
		return entry * (1 - 1/float64(leverage) + maintenance)
	}
	return entry * (1 + 1/float64(leverage) - maintenance)
}
