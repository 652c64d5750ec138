package market

import (
	"errors"
	"sync"
	"time"
)

var ErrNoPrice = errors.New("price not found")

// Tick is the latest mark price for an instrument. Perpetual futures trade
// against a single mark price, so there is no bid/ask split here; the
// execution model applies slippage around the mark instead.
type Tick struct {
	Instrument string
	Price      float64
	Time       time.Time
}

type TickStore struct {
	mu    sync.RWMutex
	ticks map[string]Tick
}

func NewTickStore() *TickStore {
	return &TickStore{ticks: make(map[string]Tick)}
}

func (ts *TickStore) Set(t Tick) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.ticks[t.Instrument] = t
}

func (ts *TickStore) Get(instr string) (Tick, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.ticks[instr]
	if !ok {
		return Tick{}, ErrNoPrice
	}
	return t, nil
}
