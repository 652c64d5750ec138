package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickStore(t *testing.T) {
	t.Parallel()

	ts := NewTickStore()

	_, err := ts.Get("ETH")
	assert.ErrorIs(t, err, ErrNoPrice)

	now := time.Now()
	ts.Set(Tick{Instrument: "ETH", Price: 3844.03, Time: now})

	tick, err := ts.Get("ETH")
	require.NoError(t, err)
	assert.Equal(t, 3844.03, tick.Price)

	// Latest write wins.
	ts.Set(Tick{Instrument: "ETH", Price: 3850, Time: now.Add(time.Second)})
	tick, err = ts.Get("ETH")
	require.NoError(t, err)
	assert.Equal(t, 3850.0, tick.Price)
}

func TestCandleStore(t *testing.T) {
	t.Parallel()

	cs := NewCandleStore()

	_, err := cs.Get("ETH")
	assert.ErrorIs(t, err, ErrNoCandle)

	cs.Set(Candle{Instrument: "ETH", Close: 3844.03})
	c, err := cs.Get("ETH")
	require.NoError(t, err)
	assert.Equal(t, 3844.03, c.Close)
}
