package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	snapsPath := filepath.Join(dir, "snapshots.csv")

	j, err := NewCSV(tradesPath, snapsPath)
	require.NoError(t, err)
	return j, tradesPath, snapsPath
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWritesHeaders(t *testing.T) {
	j, tradesPath, snapsPath := newTestCSV(t)
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 1)
	assert.Equal(t, "trade_id", trades[0][0])
	assert.Equal(t, "close_time", trades[0][len(trades[0])-1])

	snaps := readCSV(t, snapsPath)
	require.Len(t, snaps, 1)
	assert.Equal(t, "time", snaps[0][0])
}

func TestCSVRecordTrade(t *testing.T) {
	j, tradesPath, _ := newTestCSV(t)

	at := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:     "t-1",
		Instrument:  "ETH",
		Side:        "long",
		Quantity:    4.87,
		Leverage:    15,
		RealizedPnL: -311.83,
		Reason:      "invalidation",
		OpenTime:    at,
		CloseTime:   at.Add(time.Hour),
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, tradesPath)
	require.Len(t, rows, 2)
	row := rows[1]
	assert.Equal(t, "t-1", row[0])
	assert.Equal(t, "ETH", row[1])
	assert.Equal(t, "long", row[2])
	assert.Equal(t, "15", row[4])
	assert.Equal(t, "invalidation", row[11])
	assert.Equal(t, "2025-08-01T13:00:00Z", row[15])
}

func TestCSVRecordSnapshot(t *testing.T) {
	j, _, snapsPath := newTestCSV(t)

	at := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordSnapshot(SnapshotRecord{
		Time:             at,
		AvailableCash:    8751.97,
		TotalValue:       10000,
		NumOpenPositions: 1,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, snapsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-08-01T12:00:00Z", rows[1][0])
	assert.Equal(t, "10000.000000", rows[1][2])
	assert.Equal(t, "1", rows[1][4])
}
