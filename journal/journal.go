package journal

import (
	"time"

	"github.com/rustyeddy/papertrade/ledger"
)

// TradeRecord is the persisted form of a closed trade. Records are
// append-only; nothing updates or deletes them.
type TradeRecord struct {
	TradeID     string
	Instrument  string
	Side        string
	Quantity    float64
	Leverage    int
	EntryPrice  float64
	ExitPrice   float64
	NotionalUSD float64
	MarginUSD   float64
	RealizedPnL float64
	PnLPercent  float64
	Reason      string
	Confidence  float64
	RiskUSD     float64
	OpenTime    time.Time
	CloseTime   time.Time
}

// SnapshotRecord is the persisted form of a per-cycle account snapshot.
type SnapshotRecord struct {
	Time             time.Time
	AvailableCash    float64
	TotalValue       float64
	TotalReturnPct   float64
	NumOpenPositions int
}

func NewTradeRecord(t ledger.Trade) TradeRecord {
	return TradeRecord{
		TradeID:     t.ID,
		Instrument:  t.Instrument,
		Side:        t.Side.String(),
		Quantity:    t.Quantity,
		Leverage:    t.Leverage,
		EntryPrice:  t.EntryPrice,
		ExitPrice:   t.ExitPrice,
		NotionalUSD: t.NotionalUSD,
		MarginUSD:   t.MarginUSD,
		RealizedPnL: t.RealizedPnL,
		PnLPercent:  t.PnLPercent,
		Reason:      string(t.Reason),
		Confidence:  t.Confidence,
		RiskUSD:     t.RiskUSD,
		OpenTime:    t.OpenedAt,
		CloseTime:   t.ClosedAt,
	}
}

func NewSnapshotRecord(s ledger.Snapshot) SnapshotRecord {
	return SnapshotRecord{
		Time:             s.Time,
		AvailableCash:    s.AvailableCash,
		TotalValue:       s.TotalValue,
		TotalReturnPct:   s.TotalReturnPct,
		NumOpenPositions: s.NumOpenPositions,
	}
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordSnapshot(SnapshotRecord) error
	Close() error
}
