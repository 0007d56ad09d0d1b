// Command stocklens downloads historical daily stock prices for one ticker
// over one date range, persists them, fills the gaps against what is already
// stored, and renders the result as an HTML chart.
//
// Usage:
//
//	stocklens -t AAPL -s 2024-01-01 -e 2024-06-30
//	stocklens -t ^GSPC -s 2023-01-01 -e 2023-12-31 -v DEBUG
//
// Data not yet stored is downloaded from Yahoo Finance; only the missing date
// ranges are re-downloaded on repeat invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/stocklens/stocklens/internal/app"
	"github.com/stocklens/stocklens/internal/chart"
	"github.com/stocklens/stocklens/internal/config"
	"github.com/stocklens/stocklens/internal/fetch"
	"github.com/stocklens/stocklens/internal/logger"
	"github.com/stocklens/stocklens/internal/storage"
	"github.com/stocklens/stocklens/internal/validator"
)

const (
	appName = "stocklens"
	version = "1.0.0"
)

// Exit codes following standard conventions.
const (
	exitSuccess       = 0
	exitUsageError    = 1
	exitConfigError   = 2
	exitConnectionErr = 3
	exitInterrupt     = 130
)

type cliFlags struct {
	ticker      string
	startDate   string
	endDate     string
	verbosity   string
	configPath  string
	storageType string
	dbPath      string
	chartPath   string
	chartKind   string
	showVersion bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&f.ticker, "t", "", "ticker symbol of the stock (required)")
	fs.StringVar(&f.startDate, "s", "", "start date, YYYY-MM-DD (required)")
	fs.StringVar(&f.endDate, "e", "", "end date, YYYY-MM-DD (required)")
	fs.StringVar(&f.verbosity, "v", "", "verbosity level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	fs.StringVar(&f.configPath, "config", "", "path to a JSON config file")
	fs.StringVar(&f.storageType, "storage", "", "storage backend: duckdb or memory")
	fs.StringVar(&f.dbPath, "db", "", "database file path")
	fs.StringVar(&f.chartPath, "out", "", "chart output path (default <ticker>.html)")
	fs.StringVar(&f.chartKind, "chart", "", "chart kind: line or kline")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s downloads and charts historical stock data.\n", appName)
		fmt.Fprintf(fs.Output(), "Data not yet stored locally is downloaded from Yahoo Finance.\n\n")
		fmt.Fprintf(fs.Output(), "Usage: %s -t TICKER -s START_DATE -e END_DATE [-v VERBOSITY]\n\n", appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		return exitUsageError
	}
	if flags.showVersion {
		fmt.Printf("%s version %s\n", appName, version)
		return exitSuccess
	}

	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfigError
	}
	applyFlagOverrides(cfg, flags)

	log, closeLogs, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	defer closeLogs()

	// Validate user input before touching any collaborator.
	if err := validator.ValidateTickerSymbol(flags.ticker); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}
	rng, err := validator.ParseRange(flags.startDate, flags.endDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsageError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := newStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConnectionErr
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize storage: %v\n", err)
		return exitConnectionErr
	}
	if err := store.HealthCheck(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: storage is not healthy: %v\n", err)
		return exitConnectionErr
	}

	fetcher := fetch.NewYahooFetcher(cfg.Fetch, log)
	if err := fetcher.ValidateTicker(ctx, flags.ticker); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nPlease try again with a valid ticker symbol.\n", err)
		return exitUsageError
	}

	chartPath := cfg.Chart.OutputPath
	if chartPath == "" {
		chartPath = flags.ticker + ".html"
	}
	title := fmt.Sprintf("%s %s", flags.ticker, rng.String())
	presenter := chart.NewHTMLPresenter(chartPath, chart.Kind(cfg.Chart.Kind), title, log)

	a := app.New(store, fetcher, presenter, log)
	if err := a.Run(ctx, flags.ticker, rng); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Interrupted.")
			return exitInterrupt
		}
		log.Log(ctx, logger.LevelCritical, "run failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConnectionErr
	}

	fmt.Printf("Chart written to %s\n", chartPath)
	return exitSuccess
}

// applyFlagOverrides lets CLI flags win over config file and environment.
func applyFlagOverrides(cfg *config.Config, flags *cliFlags) {
	if flags.verbosity != "" {
		cfg.Logging.Level = flags.verbosity
	}
	if flags.storageType != "" {
		cfg.Storage.Type = flags.storageType
	}
	if flags.dbPath != "" {
		cfg.Storage.Path = flags.dbPath
	}
	if flags.chartPath != "" {
		cfg.Chart.OutputPath = flags.chartPath
	}
	if flags.chartKind != "" {
		cfg.Chart.Kind = flags.chartKind
	}
}

func newStore(cfg *config.Config, log *slog.Logger) (storage.PriceStore, error) {
	switch cfg.Storage.Type {
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewDuckDBStore(cfg.Storage.Path, log)
	}
}
