package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitescout/internal/api"
	"github.com/nao1215/sitescout/internal/config"
	"github.com/nao1215/sitescout/internal/database"
	"github.com/nao1215/sitescout/internal/log"
	"github.com/nao1215/sitescout/internal/monitoring"
	"github.com/nao1215/sitescout/internal/pipeline"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve starts an HTTP API that crawls sites on request and serves
stored results.

Endpoints:
  POST   /api/scrape         crawl {"url": "...", "page_budget": 5}
  GET    /api/results        list stored results (?page=&page_size=)
  GET    /api/results/{id}   get a stored result
  DELETE /api/results/{id}   delete a stored result
  GET    /api/search?q=      search stored results
  GET    /api/health         health check
  GET    /metrics            Prometheus metrics

Examples:
  # Listen on the default address
  sitescout serve

  # Listen on localhost only, without storing results
  sitescout serve --addr 127.0.0.1:9000 --no-save`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServeAddr,
		"Listen address of the API server")
	cmd.Flags().Duration("request-timeout", 2*time.Minute,
		"Time limit of every request; a scrape that hits it returns a partial result")
	cmd.Flags().IntP("pages", "p", config.DefaultPageBudget,
		"Default page budget when a request does not set one (max 50)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between content page requests")
	cmd.Flags().Bool("robots", false,
		"Skip content pages disallowed by robots.txt")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescout in current or home directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not store results; the result endpoints are disabled")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the results database")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg := config.NewConfig()

	addr, err := flags.GetString("addr")
	if err != nil {
		return err
	}
	requestTimeout, err := flags.GetDuration("request-timeout")
	if err != nil {
		return err
	}
	if cfg.PageBudget, err = flags.GetInt("pages"); err != nil {
		return err
	}
	if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
		return err
	}
	if cfg.RespectRobots, err = flags.GetBool("robots"); err != nil {
		return err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave

	if err := config.LoadInto(cfg); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	if err := cfg.ValidateSettings(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	crawler := pipeline.NewCrawler(
		pipeline.WithConfig(cfg),
		pipeline.WithCrawlLogger(logger),
		pipeline.WithRecorder(metrics),
		pipeline.WithFetchRecorder(metrics),
	)

	opts := []api.Option{
		api.WithGatherer(reg),
		api.WithLogger(logger),
		api.WithVersion(getVersion()),
		api.WithRequestTimeout(requestTimeout),
	}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, api.WithStore(db))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sitescout API listening on %s\n", addr)
	if err := api.NewServer(crawler, opts...).ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
