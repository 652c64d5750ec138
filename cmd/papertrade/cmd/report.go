package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/perf"
	"github.com/rustyeddy/papertrade/risk"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print performance metrics from a SQLite journal",
	Long: `Read a SQLite journal produced by a run and print account performance
metrics and the closed-trade log.

Example:
  papertrade report --db trades.db`,
	RunE: runReport,
}

var (
	reportDBPath     string
	reportConfigPath string
	reportPeriods    float64
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDBPath, "db", "", "path to SQLite journal (required)")
	reportCmd.Flags().StringVarP(&reportConfigPath, "config", "f", "", "config file, for drawdown limits and Sharpe annualization")
	reportCmd.Flags().Float64Var(&reportPeriods, "periods-per-year", 0, "override Sharpe annualization periods")
	reportCmd.MarkFlagRequired("db")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	snapRecs, err := j.ListSnapshots()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	tradeRecs, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	// Without a config the drawdown limits are unknown; breach flags stay
	// off and only the metrics themselves are reported.
	var policy risk.Policy
	periods := reportPeriods
	if reportConfigPath != "" {
		cfg, err := config.LoadFromFile(reportConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		policy = cfg.Policy()
		if periods == 0 {
			periods = cfg.Execution.PeriodsPerYear
		}
	}
	if periods == 0 {
		periods = config.Default().Execution.PeriodsPerYear
	}

	snapshots := make([]ledger.Snapshot, 0, len(snapRecs))
	for _, r := range snapRecs {
		snapshots = append(snapshots, ledger.Snapshot{
			Time:             r.Time,
			AvailableCash:    r.AvailableCash,
			TotalValue:       r.TotalValue,
			TotalReturnPct:   r.TotalReturnPct,
			NumOpenPositions: r.NumOpenPositions,
		})
	}
	trades := make([]ledger.Trade, 0, len(tradeRecs))
	for _, r := range tradeRecs {
		trades = append(trades, tradeFromRecord(r))
	}

	initial := initialBalance(snapshots)

	metrics := perf.Compute(snapshots, trades, initial, periods, policy)
	perf.WriteReport(os.Stdout, metrics)
	perf.WriteTrades(os.Stdout, trades)

	return nil
}

func tradeFromRecord(r journal.TradeRecord) ledger.Trade {
	side := risk.Long
	if r.Side == "short" {
		side = risk.Short
	}
	return ledger.Trade{
		Position: ledger.Position{
			ID:          r.TradeID,
			Instrument:  r.Instrument,
			Side:        side,
			Quantity:    r.Quantity,
			Leverage:    r.Leverage,
			EntryPrice:  r.EntryPrice,
			NotionalUSD: r.NotionalUSD,
			MarginUSD:   r.MarginUSD,
			Confidence:  r.Confidence,
			RiskUSD:     r.RiskUSD,
			OpenedAt:    r.OpenTime,
		},
		ExitPrice:   r.ExitPrice,
		RealizedPnL: r.RealizedPnL,
		PnLPercent:  r.PnLPercent,
		Reason:      ledger.CloseReason(r.Reason),
		Duration:    r.CloseTime.Sub(r.OpenTime),
		ClosedAt:    r.CloseTime,
	}
}

// initialBalance recovers the starting balance from the first snapshot's
// value and return percentage.
func initialBalance(snapshots []ledger.Snapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	s := snapshots[0]
	denom := 1 + s.TotalReturnPct/100
	if denom == 0 {
		return 0
	}
	return s.TotalValue / denom
}
