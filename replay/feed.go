package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

// CandleFeed reads canonical closed-candle CSV rows:
//
//	time,instrument,open,high,low,close[,volume]
//
// where time is RFC3339 or RFC3339Nano and marks the candle close. A header
// row ("time,...") is allowed; empty/short rows are skipped. Rows must be in
// time order.
type CandleFeed struct {
	f *os.File
	r *csv.Reader

	sawFirst bool
}

func NewCandleFeed(path string) (*CandleFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	return &CandleFeed{f: f, r: r}, nil
}

func (cf *CandleFeed) Close() error {
	if cf.f != nil {
		return cf.f.Close()
	}
	return nil
}

// Next returns the next candle; ok=false at EOF.
func (cf *CandleFeed) Next() (market.Candle, bool, error) {
	for {
		row, err := cf.r.Read()
		if err == io.EOF {
			return market.Candle{}, false, nil
		}
		if err != nil {
			return market.Candle{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row.
		if !cf.sawFirst {
			cf.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		c, ok, err := parseCandleRow(row)
		if err != nil {
			return market.Candle{}, false, err
		}
		if !ok {
			continue
		}
		return c, true, nil
	}
}

func parseCandleRow(row []string) (market.Candle, bool, error) {
	// Need at least: time,instrument,open,high,low,close
	if len(row) < 6 {
		return market.Candle{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Candle{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return market.Candle{}, false, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	instr := strings.TrimSpace(row[1])
	if instr == "" {
		return market.Candle{}, false, nil
	}

	vals := make([]float64, 4)
	names := []string{"open", "high", "low", "close"}
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad %s %q: %w", names[i], row[2+i], err)
		}
		vals[i] = v
	}

	c := market.Candle{
		Instrument: instr,
		Open:       vals[0],
		High:       vals[1],
		Low:        vals[2],
		Close:      vals[3],
		Time:       t,
	}

	if len(row) > 6 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64); err == nil {
			c.Volume = v
		}
	}

	return c, true, nil
}
