package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescout/internal/config"
	"github.com/nao1215/sitescout/internal/database"
	"github.com/nao1215/sitescout/internal/model"
	"github.com/nao1215/sitescout/internal/pipeline"
	"github.com/nao1215/sitescout/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl company websites and extract their profiles",
		Long: `Crawl fetches the home page of each URL, verifies its internal links,
picks the most informative pages within the page budget and extracts a
company profile: name, description, social links, contact details, team
members, products and news.

A page that fails to load is skipped; only an unreachable home page
fails the crawl. With --deadline, a crawl that runs out of time reports
what it gathered so far.

Examples:
  # Crawl a single site
  sitescout crawl https://example.com

  # Fetch up to 8 pages, home page included
  sitescout crawl -p 8 example.com

  # Crawl several sites, three at a time
  sitescout crawl -b 3 acme.io globex.com initech.com

  # Write a Markdown report to a file
  sitescout crawl --markdown -o reports/acme.md https://acme.io

  # Respect robots.txt and stop after 30 seconds
  sitescout crawl --robots --deadline 30s https://acme.io`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("pages", "p", config.DefaultPageBudget,
		"Total pages to fetch per site, home page included (max 50)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout,
		"Timeout for each content page request")
	cmd.Flags().Duration("seed-timeout", config.DefaultSeedTimeout,
		"Timeout for the home page request")
	cmd.Flags().Duration("deadline", 0,
		"Time limit for a whole crawl; partial results are reported when it expires (0 = none)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between content page requests")
	cmd.Flags().Int("concurrency", config.DefaultVerifyConcurrency,
		"Number of parallel link checks (1-8)")
	cmd.Flags().Bool("robots", false,
		"Skip content pages disallowed by robots.txt")
	cmd.Flags().StringSlice("key-types", nil,
		"Page types with a reserved slot, in priority order (default about,team,products,contact,news)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites crawled concurrently")

	// Configuration and storage
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescout in current or home directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not store results in the database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the results database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cmd.OutOrStdout(), cfg, logger)
}

// buildConfig creates a Config from the crawl command flags and the
// config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.PageBudget, err = flags.GetInt("pages"); err != nil {
		return nil, err
	}
	if cfg.PageTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.SeedTimeout, err = flags.GetDuration("seed-timeout"); err != nil {
		return nil, err
	}
	if cfg.Deadline, err = flags.GetDuration("deadline"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.VerifyConcurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.RespectRobots, err = flags.GetBool("robots"); err != nil {
		return nil, err
	}
	if cfg.KeyTypes, err = flags.GetStringSlice("key-types"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := config.LoadInto(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// An explicit -p wins over the file's per-site budgets.
	if flags.Changed("pages") && cfg.SiteConfigs != nil {
		cfg.SiteConfigs.Defaults.PageBudget = 0
		for host, site := range cfg.SiteConfigs.Sites {
			site.PageBudget = 0
			cfg.SiteConfigs.Sites[host] = site
		}
	}

	cfg.Targets = args
	return cfg, nil
}

// runCrawl crawls every target and writes one report per successful
// crawl to out, or to cfg.ReportFile when set. It returns an error when
// at least one crawl failed.
func runCrawl(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"pageBudget", cfg.PageBudget,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.ResultDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	reportOut := out
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		reportOut = f
	}
	writer := report.NewWriter(reportOut, reportFormat(cfg), getVersion())

	crawler := pipeline.NewCrawler(
		pipeline.WithConfig(cfg),
		pipeline.WithCrawlLogger(logger),
	)
	bp := pipeline.NewBatchProcessor(crawler,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	var (
		mu     sync.Mutex
		failed []string
	)
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r pipeline.BatchResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		if r.Err != nil {
			failed = append(failed, r.Seed)
			fmt.Fprintf(out, "[%d/%d] %s: %v\n", index+1, len(cfg.Targets), r.Seed, r.Err)
			return
		}

		if len(cfg.Targets) > 1 || cfg.ReportFile != "" {
			fmt.Fprintf(out, "[%d/%d] Crawl completed: %s (%d pages)\n",
				index+1, len(cfg.Targets), r.Result.SeedURL, r.Result.PageCount())
		}
		if _, err := writer.Write(r.Result); err != nil {
			logger.Error("report failed", "seed", r.Result.SeedURL, "error", err)
		}
		if err := saveResult(ctx, db, r.Result, logger); err != nil {
			logger.Error("failed to save result", "seed", r.Result.SeedURL, "error", err)
		}
	})

	logger.Info("crawl finished",
		"targets", len(cfg.Targets),
		"failed", len(failed),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d crawls failed", len(failed), len(cfg.Targets))
	}
	return nil
}

func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// createReportFile creates or truncates path, creating parent
// directories as needed. Reports may hold personal contact details, so
// the file is readable by the owner only.
func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// saveResult stores result when db is set. It is a no-op for a nil db.
func saveResult(ctx context.Context, db *database.ResultDB, result *model.ScrapeResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Store results gathered before an interrupt.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	id, err := db.SaveResult(ctx, result)
	if err != nil {
		return err
	}
	logger.Info("result saved to database", "seed", result.SeedURL, "id", id)
	return nil
}
