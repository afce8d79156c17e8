package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alexroth/tradebot/broker/alpaca"
	"github.com/alexroth/tradebot/config"
	"github.com/alexroth/tradebot/indicators"
	"github.com/alexroth/tradebot/journal"
	"github.com/alexroth/tradebot/news"
	"github.com/alexroth/tradebot/sentiment"
	"github.com/alexroth/tradebot/trader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live trading loop",
	Long: `Run the live trading loop for the configured symbol.

The loop subscribes to live ticks, refreshes news sentiment in the
background, and trades until the market session closes or the process is
interrupted.

Example:
  tradebot run --config config.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to YAML config file (optional, env vars apply on top)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	var store journal.Store
	if cfg.Journal.Type == "csv" {
		store, err = journal.NewCSV(cfg.Journal.TradesFile)
	} else {
		store, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	ledger := journal.New(store, log)
	defer ledger.Close()

	client := alpaca.NewClient(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.Paper)
	if cfg.Alpaca.Feed != "" {
		client.SetFeed(cfg.Alpaca.Feed)
	}
	stream := alpaca.NewStream(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.Feed, alpaca.StreamURL, log)
	defer stream.Close()

	cache := sentiment.NewCache()
	classifier := sentiment.NewHTTPClassifier(cfg.Sentiment.URL, cfg.Sentiment.Timeout())
	headlines := news.NewClient(cfg.News.APIKey, "", cfg.Sentiment.Timeout())
	if cfg.News.PageSize > 0 {
		headlines.PageSize = cfg.News.PageSize
	}
	watcher := news.NewWatcher(headlines, classifier, cache, cfg.News.Query, cfg.News.Refresh(), log)

	orch := trader.New(trader.Params{
		Symbol:      cfg.Trading.Symbol,
		Broker:      client,
		Bars:        client,
		Stream:      stream,
		Watcher:     watcher,
		Cache:       cache,
		Monitor:     trader.NewSessionMonitor(client, cfg.Trading.SessionPoll(), log),
		Trend:       indicators.NewTrendSMA(cfg.Trading.SMAWindow),
		Throttle:    trader.NewThrottle(cfg.Trading.Cooldown()),
		Ledger:      ledger,
		BarLookback: cfg.Trading.BarLookback(),
		BarInterval: cfg.Trading.BarInterval(),
		Logger:      log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("symbol", cfg.Trading.Symbol).
		Bool("paper", cfg.Alpaca.Paper).
		Str("journal", cfg.Journal.Type).
		Msg("starting trading loop")

	return orch.Run(ctx)
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.Pretty {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log, nil
}
