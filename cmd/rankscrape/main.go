package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skoeller/rankscrape/internal/config"
	"github.com/skoeller/rankscrape/internal/engine"
	"github.com/skoeller/rankscrape/internal/fetcher"
)

var (
	cfgFile     string
	verbose     bool
	pageSize    int
	startPage   int
	maxPages    int
	maxRank     int
	outputFile  string
	outputDir   string
	keepFlag    bool
	withRaw     bool
	toSQLite    bool
	dbPath      string
	delay       string
	userAgent   string
	fetcherType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rankscrape",
		Short: "rankscrape — export federation ranking tables to CSV and SQLite",
		Long: `rankscrape scrapes the paginated player ranking tables published by the
badminton federation website, normalizes the German column headers, and
exports the rows to CSV files and optionally a SQLite database.

The publication week, table caption, and column layout are taken from the
first page and held fixed for the whole run. Consent cookie walls are
passed automatically.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape one ranking category",
		Long:  "Scrape every page of the ranking table at the given URL and export the rows.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows requested per page (0 = config default)")
	cmd.Flags().IntVar(&startPage, "start-page", 0, "first page number to fetch")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum pages to fetch (0 = until exhausted)")
	cmd.Flags().IntVar(&maxRank, "max-rank", 0, "stop after this rank (0 = no cutoff)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "explicit CSV output path (overrides the generated name)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "base directory for generated CSV files")
	cmd.Flags().BoolVar(&keepFlag, "keep-flag", false, "keep the unlabeled flag column")
	cmd.Flags().BoolVar(&withRaw, "with-raw", false, "append raw pre-coercion columns to the CSV")
	cmd.Flags().BoolVar(&toSQLite, "to-sqlite", false, "also upsert rows into the SQLite database")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "SQLite database path")
	cmd.Flags().StringVar(&delay, "delay", "", "politeness delay between page fetches (e.g. 900ms)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger("text")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger = setupLogger(cfg.Logging.Format)

	rawURL := args[0]
	if err := config.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	f, err := newFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	runner := engine.NewRunner(cfg, f, logger)
	summary, err := runner.Run(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	fmt.Printf("\nScrape complete in %s\n", summary.Duration.Round(time.Millisecond))
	fmt.Printf("   Week:     %s\n", summary.RankWeek)
	fmt.Printf("   Category: %s\n", summary.Caption)
	fmt.Printf("   Pages:    %d\n", summary.Pages)
	fmt.Printf("   Rows:     %d written (%d parsed)\n", summary.Written, summary.Parsed)
	fmt.Printf("   CSV:      %s\n", summary.CSVPath)
	if cfg.Output.ToSQLite {
		fmt.Printf("   SQLite:   %s\n", cfg.Output.DBPath)
	}

	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rankscrape %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("HTTP:\n")
			fmt.Printf("  Fetcher:          %s\n", cfg.HTTP.Fetcher)
			fmt.Printf("  User Agent:       %s\n", cfg.HTTP.UserAgent)
			fmt.Printf("  Request Timeout:  %s\n", cfg.HTTP.RequestTimeout)
			fmt.Printf("  Max Retries:      %d\n", cfg.HTTP.MaxRetries)
			fmt.Printf("  Retry Delay:      %s\n", cfg.HTTP.RetryDelay)
			fmt.Printf("\nScrape:\n")
			fmt.Printf("  Page Size:        %d\n", cfg.Scrape.PageSize)
			fmt.Printf("  Start Page:       %d\n", cfg.Scrape.StartPage)
			fmt.Printf("  Max Pages:        %d\n", cfg.Scrape.MaxPages)
			fmt.Printf("  Max Rank:         %d\n", cfg.Scrape.MaxRank)
			fmt.Printf("  Keep Flag:        %v\n", cfg.Scrape.KeepFlag)
			fmt.Printf("  Keep Raw:         %v\n", cfg.Scrape.KeepRaw)
			fmt.Printf("  Politeness Delay: %s\n", cfg.Scrape.PolitenessDelay)
			fmt.Printf("\nOutput:\n")
			fmt.Printf("  Directory:        %s\n", cfg.Output.Dir)
			fmt.Printf("  To SQLite:        %v\n", cfg.Output.ToSQLite)
			fmt.Printf("  DB Path:          %s\n", cfg.Output.DBPath)
			return nil
		},
	}
}

// newFetcher builds the configured fetcher implementation.
func newFetcher(cfg *config.Config, logger *slog.Logger) (fetcher.Fetcher, error) {
	if cfg.HTTP.Fetcher == "browser" {
		return fetcher.NewBrowserFetcher(cfg, logger)
	}
	return fetcher.NewHTTPFetcher(cfg, logger)
}

// setupLogger creates a structured logger.
func setupLogger(format string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if pageSize > 0 {
		cfg.Scrape.PageSize = pageSize
	}
	if startPage > 0 {
		cfg.Scrape.StartPage = startPage
	}
	if maxPages > 0 {
		cfg.Scrape.MaxPages = maxPages
	}
	if maxRank > 0 {
		cfg.Scrape.MaxRank = maxRank
	}
	if keepFlag {
		cfg.Scrape.KeepFlag = true
	}
	if withRaw {
		cfg.Scrape.KeepRaw = true
	}
	if delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			cfg.Scrape.PolitenessDelay = d
		}
	}
	if outputFile != "" {
		cfg.Output.File = outputFile
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if toSQLite {
		cfg.Output.ToSQLite = true
	}
	if dbPath != "" {
		cfg.Output.DBPath = dbPath
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if fetcherType != "" {
		cfg.HTTP.Fetcher = fetcherType
	}
}
