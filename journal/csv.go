package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades    *csv.Writer
	snapshots *csv.Writer
	tf, sf    *os.File
}

func NewCSV(tradesPath, snapshotsPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(snapshotsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	sw := csv.NewWriter(sf)

	if err := tw.Write([]string{"trade_id", "instrument", "side", "quantity", "leverage",
		"entry_price", "exit_price", "notional_usd", "margin_usd", "realized_pnl",
		"pnl_percent", "reason", "confidence", "risk_usd", "open_time", "close_time"}); err != nil {
		return nil, err
	}
	if err := sw.Write([]string{"time", "available_cash", "total_value",
		"total_return_pct", "num_open_positions"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, sw, tf, sf}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Instrument,
		t.Side,
		f(t.Quantity),
		strconv.Itoa(t.Leverage),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.NotionalUSD),
		f(t.MarginUSD),
		f(t.RealizedPnL),
		f(t.PnLPercent),
		t.Reason,
		f(t.Confidence),
		f(t.RiskUSD),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordSnapshot(s SnapshotRecord) error {
	err := j.snapshots.Write([]string{
		s.Time.Format(time.RFC3339),
		f(s.AvailableCash),
		f(s.TotalValue),
		f(s.TotalReturnPct),
		strconv.Itoa(s.NumOpenPositions),
	})
	if err != nil {
		return err
	}
	j.snapshots.Flush()
	return j.snapshots.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.snapshots.Flush()
	if err := j.snapshots.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.sf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
