package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A leveraged paper-trading ledger and risk-gated execution engine",
	Long: `Papertrade simulates leveraged derivative trading: it validates trade
intents against a static risk policy, runs them through a position ledger
with margin, liquidation and PnL accounting, and monitors open positions
against stop and invalidation conditions.

It provides tools for:
  - Replaying candle datasets with scripted trade intents
  - Risk-gated validation with specific rejection reasons
  - Margin, liquidation-price and slippage/fee arithmetic
  - Account performance metrics (return, Sharpe, drawdown, win rate)
  - SQLite and CSV trade journals`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
