package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, side, quantity, leverage, entry_price, exit_price,
		 notional_usd, margin_usd, realized_pnl, pnl_percent, reason, confidence,
		 risk_usd, open_time, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument, t.Side, t.Quantity, t.Leverage, t.EntryPrice,
		t.ExitPrice, t.NotionalUSD, t.MarginUSD, t.RealizedPnL, t.PnLPercent,
		t.Reason, t.Confidence, t.RiskUSD, t.OpenTime, t.CloseTime,
	)
	return err
}

func (j *SQLiteJournal) RecordSnapshot(s SnapshotRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots
		(time, available_cash, total_value, total_return_pct, num_open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		s.Time, s.AvailableCash, s.TotalValue, s.TotalReturnPct, s.NumOpenPositions,
	)
	return err
}

// ListTrades returns all recorded trades ordered by close time.
func (j *SQLiteJournal) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, instrument, side, quantity, leverage, entry_price,
		       exit_price, notional_usd, margin_usd, realized_pnl, pnl_percent,
		       reason, confidence, risk_usd, open_time, close_time
		FROM trades ORDER BY close_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.Instrument, &t.Side, &t.Quantity,
			&t.Leverage, &t.EntryPrice, &t.ExitPrice, &t.NotionalUSD, &t.MarginUSD,
			&t.RealizedPnL, &t.PnLPercent, &t.Reason, &t.Confidence, &t.RiskUSD,
			&t.OpenTime, &t.CloseTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListSnapshots returns the snapshot history in time order.
func (j *SQLiteJournal) ListSnapshots() ([]SnapshotRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, available_cash, total_value, total_return_pct, num_open_positions
		FROM snapshots ORDER BY time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var s SnapshotRecord
		if err := rows.Scan(&s.Time, &s.AvailableCash, &s.TotalValue,
			&s.TotalReturnPct, &s.NumOpenPositions); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
