package ledger

import (
	"sort"
	"time"
)

// PositionView is a read-only copy of an open position enriched with the
// mark price and unrealized PnL at snapshot time.
type PositionView struct {
	Position

	MarkPrice     float64
	UnrealizedPnL float64
}

// Snapshot is the account state published once per decision cycle. It is
// immutable after publication; concurrent readers always see a complete
// pre-cycle or post-cycle view, never an interleaving.
type Snapshot struct {
	Time             time.Time
	AvailableCash    float64
	TotalValue       float64
	TotalReturnPct   float64
	NumOpenPositions int
	Positions        []PositionView
}

// PublishSnapshot computes the account snapshot from current state and the
// latest marks, publishes it atomically for readers, and returns it. Called
// once per cycle after all position mutations are final. A position whose
// mark is missing this cycle is valued at its entry price.
func (l *Ledger) PublishSnapshot(at time.Time) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	views := make([]PositionView, 0, len(l.positions))
	total := l.cash

	for _, p := range l.positions {
		mark := p.EntryPrice
		if tick, err := l.ticks.Get(p.Instrument); err == nil {
			mark = tick.Price
		}
		upnl := p.UnrealizedPnL(mark)
		total += p.MarginUSD + upnl
		views = append(views, PositionView{Position: *p, MarkPrice: mark, UnrealizedPnL: upnl})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Instrument < views[j].Instrument })

	snap := Snapshot{
		Time:             at,
		AvailableCash:    l.cash,
		TotalValue:       total,
		TotalReturnPct:   (total - l.cfg.InitialBalance) / l.cfg.InitialBalance * 100,
		NumOpenPositions: len(views),
		Positions:        views,
	}

	l.snapshot.Store(&snap)
	return snap
}

// LatestSnapshot returns the most recently published snapshot. It is safe
// to call concurrently with a running cycle.
func (l *Ledger) LatestSnapshot() (Snapshot, bool) {
	s := l.snapshot.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}
