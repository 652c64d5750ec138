package perf

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/papertrade/ledger"
)

// WriteReport prints an account performance summary.
func WriteReport(w io.Writer, m Metrics) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Performance Report")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Final Value:   %.2f\n", m.FinalValue)
	fmt.Fprintf(w, "Peak Value:    %.2f\n", m.PeakValue)
	fmt.Fprintf(w, "Return:        %.2f%%\n", m.TotalReturnPct)
	fmt.Fprintf(w, "Sharpe:        %.2f\n", m.Sharpe)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", m.MaxDrawdown*100)

	if m.DailyDrawdownBreached {
		fmt.Fprintln(w, "WARNING:       daily drawdown limit breached")
	}
	if m.TotalDrawdownBreached {
		fmt.Fprintln(w, "WARNING:       total drawdown limit breached")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trades")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", m.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", m.Wins)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", m.WinRate*100)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", m.TotalPnL)
	fmt.Fprintln(w)
}

// WriteTrades prints the closed-trade log as a table. Liquidations are
// reported in the stop_loss bucket.
func WriteTrades(w io.Writer, trades []ledger.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No closed trades.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Instrument", "Side", "Qty", "Lev", "Entry", "Exit", "PnL $", "PnL %", "Reason", "Closed")

	for _, t := range trades {
		table.Append(
			t.Instrument,
			t.Side.String(),
			fmt.Sprintf("%.4f", t.Quantity),
			fmt.Sprintf("%dx", t.Leverage),
			fmt.Sprintf("%.2f", t.EntryPrice),
			fmt.Sprintf("%.2f", t.ExitPrice),
			fmt.Sprintf("%+.2f", t.RealizedPnL),
			fmt.Sprintf("%+.2f%%", t.PnLPercent),
			string(t.Reason.Bucket()),
			t.ClosedAt.UTC().Format(time.RFC3339),
		)
	}

	table.Render()
}
