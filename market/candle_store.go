package market

import (
	"errors"
	"sync"
)

var ErrNoCandle = errors.New("candle not found")

// CandleStore holds the latest closed candle per instrument.
type CandleStore struct {
	mu      sync.RWMutex
	candles map[string]Candle
}

func NewCandleStore() *CandleStore {
	return &CandleStore{candles: make(map[string]Candle)}
}

func (cs *CandleStore) Set(c Candle) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.candles[c.Instrument] = c
}

func (cs *CandleStore) Get(instr string) (Candle, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.candles[instr]
	if !ok {
		return Candle{}, ErrNoCandle
	}
	return c, nil
}
