package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/cycle"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/perf"
	"github.com/rustyeddy/papertrade/pkg/logger"
	"github.com/rustyeddy/papertrade/replay"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a candle dataset with scripted intents",
	Long: `Run the engine over a recorded candle dataset, feeding it scripted
trade intents. Each candle row is one decision cycle: intents due at the
candle's time are validated and applied, open positions are checked against
liquidation, invalidation, stop and target levels, and an account snapshot
is journaled.

Example:
  papertrade run -f config.yaml --candles eth_3m.csv --script intents.yaml`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runCandlesPath string
	runScriptPath  string
	runLogLevel    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runCandlesPath, "candles", "", "path to candle CSV dataset (required)")
	runCmd.Flags().StringVar(&runScriptPath, "script", "", "path to scripted intents YAML")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "zap log level")
	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("candles")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(runLogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	var j journal.Journal
	if cfg.Journal.Type == "csv" {
		j, err = journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.SnapshotsFile)
	} else {
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	runner, err := cycle.NewRunner(ledger.New(cfg.LedgerConfig()), cfg.Policy(), j, log)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	feed, err := replay.NewCandleFeed(runCandlesPath)
	if err != nil {
		return fmt.Errorf("open candles: %w", err)
	}

	var script *replay.Script
	if runScriptPath != "" {
		script, err = replay.LoadScript(runScriptPath)
		if err != nil {
			return fmt.Errorf("load script: %w", err)
		}
	}

	r := &replay.Replay{
		Runner:         runner,
		Feed:           feed,
		Script:         script,
		Policy:         cfg.Policy(),
		PeriodsPerYear: cfg.Execution.PeriodsPerYear,
	}

	metrics, err := r.Run()
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	perf.WriteReport(os.Stdout, metrics)
	perf.WriteTrades(os.Stdout, runner.Ledger().Trades())

	return nil
}
