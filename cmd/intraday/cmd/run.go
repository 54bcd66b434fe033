package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/intraday/backtest"
	"github.com/rustyeddy/intraday/config"
	"github.com/rustyeddy/intraday/journal"
	"github.com/rustyeddy/intraday/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over minute history and an order list",
	Long: `Run replays every trading day found in the minute-history file,
attaching the candidate orders for that date, and reports compounded
results.

Example:
  intraday run --history MES_1min.csv --orders positions.csv --config run.yaml`,
	RunE: runBacktest,
}

var (
	runConfigPath  string
	runHistoryPath string
	runOrdersPath  string
	runCachePath   string
	runVerbose     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config (default: built-in MES defaults)")
	runCmd.Flags().StringVarP(&runHistoryPath, "history", "H", "", "path to minute-history CSV (required unless cached)")
	runCmd.Flags().StringVarP(&runOrdersPath, "orders", "o", "", "path to order CSV (required)")
	runCmd.Flags().StringVar(&runCachePath, "cache", "", "optional session cache artifact, reused when present")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log business outcomes (unfilled orders, skipped dates)")

	runCmd.MarkFlagRequired("orders")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	engineCfg, err := cfg.Engine()
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if runVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	days, err := loadDays(log)
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer jnl.Close()

	p := backtest.New(engineCfg, cfg.Capital.Initial,
		backtest.WithLogger(log),
		backtest.WithJournal(jnl),
		backtest.WithMonthlyLossCutoff(cfg.Capital.MonthlyLossCutoff),
	)

	if err := backtest.BuildSessions(p, days, engineCfg); err != nil {
		return err
	}

	orderDays, err := backtest.LoadOrders(runOrdersPath, backtest.OrderFeedOptions{
		StopAsPoints: cfg.Entry.StopAsPoints,
	})
	if err != nil {
		return err
	}
	for _, od := range orderDays {
		if err := p.AttachOrders(od.Date, od.Orders); err != nil {
			return err
		}
	}

	if err := p.Run(); err != nil {
		return err
	}

	backtest.PrintSummary(os.Stdout, p)
	return nil
}

// loadDays reads the per-day bar groups, reusing the cache artifact when
// one exists and refreshing it after a fresh parse.
func loadDays(log *zap.Logger) ([]market.Day, error) {
	if runCachePath != "" {
		days, ok, err := backtest.LoadSessionCache(runCachePath)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Info("sessions loaded from cache", zap.String("path", runCachePath), zap.Int("days", len(days)))
			return days, nil
		}
	}

	if runHistoryPath == "" {
		return nil, fmt.Errorf("run: --history required (no cache artifact found)")
	}

	days, err := market.LoadHistory(runHistoryPath)
	if err != nil {
		return nil, err
	}

	if runCachePath != "" {
		if err := backtest.SaveSessionCache(runCachePath, days); err != nil {
			return nil, err
		}
	}
	return days, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.PositionsFile, jc.SessionsFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
