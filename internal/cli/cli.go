package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/config"
	"github.com/pfrederiksen/dira-lottery/internal/dira"
	"github.com/pfrederiksen/dira-lottery/internal/logger"
	"github.com/pfrederiksen/dira-lottery/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2 // some lotteries failed under the collect policy
)

var (
	flagConfig       string
	flagDataDir      string
	flagRecords      string
	flagLocalHousing string
	flagFormat       string
	flagVerbose      bool

	flagBaseURL  string
	flagPolicy   string
	flagRetries  int
	flagCacheTTL time.Duration
	flagCache    string
	flagCity     string
	flagSort     string
	flagExport   string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dira-lottery",
		Short: "Prepare Dira housing-lottery data for display",
		Long: `A CLI tool that prepares Israeli "Dira Behanaha" housing-lottery data.
It enriches lottery records with local-housing quotas, fetches registrant
counts from the Dira API in batches of 10 and builds the rows and column
schema of the lottery grid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	pf.StringVar(&flagDataDir, "data-dir", config.DefaultDataDir, "Data directory for input and export files")
	pf.StringVar(&flagRecords, "records", config.DefaultRecords, "Lottery records file (.json or .csv)")
	pf.StringVar(&flagLocalHousing, "local-housing", config.DefaultLocalHousing, "Local-housing table (.json, .csv or .html)")
	pf.StringVar(&flagFormat, "format", string(FormatText), "Output format: text or json")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print metrics")

	cmd.AddCommand(
		newCitiesCmd(),
		newEnrichCmd(),
		newSubscribersCmd(),
		newReportCmd(),
		newShowCmd(),
		newDiffCmd(),
		newColumnsCmd(),
		newOddsCmd(),
	)

	return cmd
}

// env is what every command needs after flags and config are resolved.
type env struct {
	cfg    *config.Config
	store  *storage.Storage
	format OutputFormat
	out    io.Writer
}

// setup loads the config, applies flag overrides, installs the logger and
// opens the data directory.
func setup(cmd *cobra.Command) (*env, error) {
	format, err := ParseFormat(flagFormat)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadAndValidate(flagConfig, func(cfg *config.Config) {
		applyOverrides(cmd, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	store, err := storage.New(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	logger.Debug("Configured", logger.Fields{
		"data_dir":       store.DataDir(),
		"base_url":       cfg.API.BaseURL,
		"failure_policy": cfg.Aggregate.FailurePolicy,
	})

	return &env{cfg: cfg, store: store, format: format, out: cmd.OutOrStdout()}, nil
}

// applyOverrides copies explicitly set flags over file values.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("data-dir") {
		cfg.Data.Dir = flagDataDir
	}
	if changed("records") {
		cfg.Data.Records = flagRecords
	}
	if changed("local-housing") {
		cfg.Data.LocalHousing = flagLocalHousing
	}
	if changed("base-url") {
		cfg.API.BaseURL = flagBaseURL
	}
	if changed("failure-policy") {
		cfg.Aggregate.FailurePolicy = flagPolicy
	}
	if changed("retries") {
		cfg.API.Retries = flagRetries
	}
	if changed("cache-ttl") {
		cfg.API.CacheTTL = flagCacheTTL
	}
	if changed("cache") {
		cfg.Data.Cache = flagCache
	}
	if changed("export") {
		cfg.Data.Export = flagExport
	}
}

// finish prints the metrics snapshot of a verbose run.
func finish() {
	if flagVerbose {
		logger.Info("Metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
	}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var aggErr *dira.AggregateError
	if errors.As(err, &aggErr) {
		return ExitPartial
	}
	return ExitError
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
