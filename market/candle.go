package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data for one
// closed interval. The engine only ever evaluates closed candles; intra-candle
// prices arrive as Ticks.
type Candle struct {
	Instrument string
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Time       time.Time // close time of the candle
	Volume     float64
}
