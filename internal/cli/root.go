// Package cli provides the command-line interface for the portfolio
// dashboard.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"portfolio-dashboard/internal/config"
	"portfolio-dashboard/internal/feeds"
	"portfolio-dashboard/internal/logging"
	"portfolio-dashboard/internal/portfolio"
	"portfolio-dashboard/internal/prices"
	"portfolio-dashboard/internal/remote"
	"portfolio-dashboard/internal/store"
	"portfolio-dashboard/internal/tableview"
	"portfolio-dashboard/internal/valuation"
	"portfolio-dashboard/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-10-17"
)

// annotationNoStore marks commands that run without opening the portfolio.
const annotationNoStore = "no-store"

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      *store.Store
	Cache      *prices.Cache
	Engine     *valuation.Engine
	Aggregator *portfolio.Aggregator
	Model      *tableview.Model
	Refresher  *feeds.Refresher
	Syncer     *remote.GitHubSyncer
	States     *tableview.States
}

// NewApp wires every collaborator except the store, which is opened on
// first use so commands like "config path" work without a portfolio.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	cache := prices.NewCache().WithFallbackRate(cfg.Portfolio.FallbackUSDINR)
	engine := valuation.NewEngine(cache)

	client := feeds.NewHTTPClient(cfg.Feeds.Timeout)
	retry := utils.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Feeds.MaxRetries
	refresher := feeds.NewRefresher(
		feeds.NewAMFIFetcher(client, cfg.Feeds.AMFIURL),
		feeds.NewYahooFetcher(client, cfg.Feeds.YahooURL),
		cache,
	).WithConcurrency(cfg.Feeds.Concurrency).
		WithRetry(retry).
		WithLogger(logger.With().Str("component", "feeds").Logger())

	gh := cfg.Credentials.GitHub
	syncer := remote.NewGitHubSyncer(remote.GitHubConfig{
		Token:  gh.Token,
		Repo:   gh.Repo,
		Path:   gh.Path,
		Branch: gh.Branch,
	}, nil).WithLogger(logger.With().Str("component", "sync").Logger())

	return &App{
		Config:     cfg,
		Logger:     logger,
		Cache:      cache,
		Engine:     engine,
		Aggregator: portfolio.NewAggregator(engine, cfg.Portfolio.PrimaryOwner),
		Model:      tableview.NewModel(engine).WithLanguage(cfg.Language()),
		Refresher:  refresher,
		Syncer:     syncer,
	}
}

// Open opens the configured persister and loads the portfolio and view
// state. It is a no-op once the store is open.
func (a *App) Open(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}
	persister, err := store.OpenPersister(a.Config.Storage.Driver, a.Config.StoragePath())
	if err != nil {
		return err
	}
	ctx = logging.WithLogger(ctx, a.Logger)
	s, err := store.Open(ctx, persister)
	if err != nil {
		persister.Close()
		return err
	}
	s.SetStaleThreshold(store.SyncTypePrices, a.Config.Feeds.StaleAfter)
	a.Store = s
	a.States = s.LoadViewStates(ctx)
	a.Logger.Debug().
		Str("driver", a.Config.Storage.Driver).
		Str("path", a.Config.StoragePath()).
		Msg("Portfolio store opened")
	return nil
}

// loadPrices refreshes the price cache for the current portfolio unless
// --offline is set. Failures only degrade values to cost basis, so they are
// reported but never returned.
func (a *App) loadPrices(cmd *cobra.Command, output *Output) *feeds.Report {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return nil
	}
	report := a.Refresher.Refresh(cmd.Context(), a.Store.Portfolio())
	if len(report.Updated) > 0 {
		if err := a.Store.MarkSynced(store.SyncTypePrices, time.Now()); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to record price refresh time")
		}
	}
	if len(report.Failed) > 0 && !output.IsJSON() {
		output.Warning("⚠ %d of %d prices unavailable, showing cost basis for those holdings",
			len(report.Failed), len(report.Failed)+len(report.Updated))
	}
	return &report
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := NewApp(cfg, logger)

	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio Dashboard - personal investment tracker",
		Long: `Portfolio Dashboard tracks fixed deposits, mutual funds, Indian and US
stocks, and gold in one place.

Live NAVs come from AMFI and quotes from Yahoo Finance. Holdings are stored
locally (JSON or SQLite) and can be pushed to a GitHub repository.

Use 'portfolio <command> --help' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
				t, err := time.ParseInLocation("2006-01-02", asOf, utils.IndiaLocation)
				if err != nil {
					return fmt.Errorf("invalid --as-of date %q (want YYYY-MM-DD)", asOf)
				}
				app.Engine.WithClock(func() time.Time { return t })
			}
			if cmd.Annotations[annotationNoStore] == "true" {
				return nil
			}
			return app.Open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/portfolio-dashboard)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", !cfg.UI.ColorEnabled, "disable colored output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("as-of", "", "value holdings as of this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Bool("offline", false, "skip fetching live prices; holdings are valued at cost")

	addCoreCommands(rootCmd, app)
	addViewCommands(rootCmd, app)
	addHoldingCommands(rootCmd, app)
	addPriceCommands(rootCmd, app)
	addDataCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func noStore(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[annotationNoStore] = "true"
	return cmd
}

func newVersionCmd() *cobra.Command {
	return noStore(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Portfolio Dashboard v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	})
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := noStore(&cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	})

	cmd.AddCommand(noStore(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			redacted := app.Config.Redacted()
			if output.IsJSON() {
				return output.JSON(redacted)
			}
			showConfig(output, &redacted, app.Config.StoragePath())
			return nil
		},
	}))

	cmd.AddCommand(noStore(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir(), "portfolio": app.Config.StoragePath()})
			} else {
				output.Println(app.Config.Dir())
			}
		},
	}))

	cmd.AddCommand(noStore(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	}))

	return cmd
}

func showConfig(output *Output, cfg *config.Config, storagePath string) {
	output.Bold("Storage")
	output.Printf("  Driver:          %s\n", cfg.Storage.Driver)
	output.Printf("  Path:            %s\n", storagePath)
	output.Println()

	output.Bold("Portfolio")
	output.Printf("  Primary Owner:   %s\n", cfg.Portfolio.PrimaryOwner)
	output.Printf("  Fallback USDINR: %.2f\n", cfg.Portfolio.FallbackUSDINR)
	output.Println()

	output.Bold("Price Feeds")
	output.Printf("  AMFI:            %s\n", cfg.Feeds.AMFIURL)
	output.Printf("  Yahoo:           %s\n", cfg.Feeds.YahooURL)
	output.Printf("  Timeout:         %s\n", cfg.Feeds.Timeout)
	output.Printf("  Concurrency:     %d\n", cfg.Feeds.Concurrency)
	output.Printf("  Max Retries:     %d\n", cfg.Feeds.MaxRetries)
	output.Println()

	output.Bold("Watch")
	output.Printf("  Schedule:        %s\n", cfg.Watch.Schedule)
	output.Printf("  Market Hours:    %v\n", cfg.Watch.MarketHoursOnly)
	output.Println()

	output.Bold("GitHub Sync")
	gh := cfg.Credentials.GitHub
	if gh.Repo == "" {
		output.Dim("  Not configured")
		return
	}
	output.Printf("  Repo:            %s\n", gh.Repo)
	output.Printf("  Path:            %s\n", gh.Path)
	output.Printf("  Token:           %s\n", gh.Token)
}
