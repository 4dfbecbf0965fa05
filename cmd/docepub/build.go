package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/docepub/internal/config"
	"github.com/nao1215/docepub/internal/crawler"
	"github.com/nao1215/docepub/internal/database"
	"github.com/nao1215/docepub/internal/fetch"
	"github.com/nao1215/docepub/internal/images"
	"github.com/nao1215/docepub/internal/model"
	"github.com/nao1215/docepub/internal/nav"
	"github.com/nao1215/docepub/internal/pipeline"
	"github.com/nao1215/docepub/internal/render"
	"github.com/nao1215/docepub/internal/report"
	"github.com/nao1215/docepub/internal/workpool"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [base-url]",
		Short: "Build a book from a documentation site",
		Long: `Build crawls the documentation rooted at base-url and renders it as one book.

The base URL is the page carrying the navigation menu. It may be an http or
https URL, a file URL, or a local path. A local site is given by its
directory or its index.html. Without a base URL the Spring reference
documentation of --project and --version is built.

Examples:
  # Build the current Spring Framework reference as EPUB
  docepub build

  # Build a specific Spring project version
  docepub build --project spring-boot --version 3.2.x

  # Build any Antora site as a Word document
  docepub build https://docs.example.com/guide/ --format docx

  # Skip pandoc and keep the assembled HTML
  docepub build --format html -o book

  # Write a Markdown summary next to the book
  docepub build --summary output/summary.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuildCmd,
	}

	cmd.Flags().String("project", config.DefaultProject,
		"Spring project to build when no base URL is given")
	cmd.Flags().String("version", config.DefaultVersion,
		"Spring project version (latest selects the current release)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory for images and the book")
	cmd.Flags().Bool("sequential", false,
		"Fetch pages one at a time instead of in parallel")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Output format: html, or any pandoc writer (epub, docx, pdf, ...)")
	cmd.Flags().StringP("name", "n", "",
		"Output file name without extension (default: derived from the source)")
	cmd.Flags().String("title", "",
		"Book title (default: derived from the output name)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of each request attempt")
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Attempts per request on connection failures")
	cmd.Flags().IntP("workers", "w", 0,
		"Concurrent requests (default: number of CPUs)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .docepub in current or home directory)")
	cmd.Flags().StringP("summary", "s", "",
		"Write a build summary to this path (.json for JSON, Markdown otherwise)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the build in the history database")

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runBuild(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig creates a Config from the configuration file and the command
// flags. Flags that were set explicitly override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(file); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"project": &cfg.Project,
		"version": &cfg.Version,
		"output":  &cfg.OutputDir,
		"format":  &cfg.Format,
		"name":    &cfg.Name,
		"title":   &cfg.Title,
		"proxy":   &cfg.ProxyAddress,
		"summary": &cfg.SummaryFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"retries": &cfg.Retries,
		"workers": &cfg.Workers,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	sequential, err := flags.GetBool("sequential")
	if err != nil {
		return nil, err
	}
	cfg.Parallel = !sequential

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	return cfg, nil
}

// newTransport creates the HTTP transport with the proxy and the
// credentials of the configuration file.
func newTransport(cfg *config.Config) (*fetch.Transport, error) {
	opts := []fetch.TransportOption{}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}
	if cfg.SiteConfigs != nil {
		d := cfg.SiteConfigs.Defaults.SiteConfig
		opts = append(opts, fetch.WithDefaultCredentials(fetch.Credentials{Cookie: d.Cookie, Headers: d.Headers}))
		for host, site := range cfg.SiteConfigs.Sites {
			opts = append(opts, fetch.WithSiteCredentials(host, fetch.Credentials{Cookie: site.Cookie, Headers: site.Headers}))
		}
	}
	return fetch.NewTransport(opts...)
}

// newPipeline wires the build steps and the renderer for cfg.
func newPipeline(cfg *config.Config, transport *fetch.Transport, renderer render.Renderer, logger *slog.Logger) *pipeline.Pipeline {
	client := fetch.NewClient(transport.HTTPClient(),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithAttempts(cfg.Retries),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithClientLogger(logger),
	)
	retriever := fetch.NewHTMLRetriever(client)

	workers := cfg.Workers
	if workers == 0 {
		workers = workpool.DefaultSize()
	}

	p := pipeline.NewBuildPipeline(pipeline.Components{
		Retriever:   retriever,
		Parser:      nav.NewParser(nav.WithLogger(logger)),
		Coordinator: crawler.NewCoordinator(retriever, crawler.WithWorkers(workers), crawler.WithLogger(logger)),
		Images:      images.NewPipeline(client, images.WithWorkers(workers), images.WithLogger(logger)),
	}, pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewRenderStep(renderer, cfg.OutputName(), cfg.Format, logger))

	return p
}

// runBuild executes one build and reports its outcome. The summary and the
// history record are written even when the build fails.
func runBuild(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	base, err := cfg.ResolveBaseURL()
	if err != nil {
		return err
	}

	transport, err := newTransport(cfg)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	p := newPipeline(cfg, transport, render.NewPandoc(render.WithLogger(logger)), logger)

	build := model.NewBuild(base, cfg.OutputDir, cfg.Parallel)
	build.Title = cfg.BookTitle()

	logger.Info("starting build",
		"base", base.String(),
		"output", cfg.OutputDir,
		"format", cfg.Format,
		"parallel", cfg.Parallel,
		"steps", p.StepCount(),
	)
	fmt.Fprintf(stdout, "Building %s from %s...\n", build.Title, base)

	buildErr := p.Execute(ctx, build)

	summary := report.NewSummary(build, cfg.Format, buildErr)
	if build.Book != nil {
		digest, err := documentDigest(build.Book)
		if err != nil {
			logger.Warn("failed to digest book", "error", err)
		}
		summary.Digest = digest
	}

	if _, err := report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)).Write(summary); err != nil {
		logger.Error("failed to write summary", "error", err)
	}
	if cfg.SummaryFile != "" {
		if err := writeSummaryFile(cfg.SummaryFile, summary); err != nil {
			logger.Error("failed to write summary file", "path", cfg.SummaryFile, "error", err)
		}
	}
	if cfg.SaveHistory {
		if err := saveBuild(ctx, cfg.DBDir, summary, logger); err != nil {
			logger.Error("failed to record build", "error", err)
		}
	}

	return buildErr
}

// documentDigest returns the SHA3-256 of the serialized book.
func documentDigest(book *model.Book) (string, error) {
	var buf bytes.Buffer
	if err := book.Render(&buf); err != nil {
		return "", err
	}
	return database.Digest(buf.Bytes()), nil
}

// writeSummaryFile writes s to path in the format its extension selects.
func writeSummaryFile(path string, s *report.Summary) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	_, err = report.ForPath(path, f).Write(s)
	return err
}

// saveBuild appends the summary to the history database in dbDir.
// The record is written with a fresh context so a canceled build is still
// recorded.
func saveBuild(ctx context.Context, dbDir string, s *report.Summary, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	status := database.StatusSucceeded
	if !s.Succeeded() {
		status = database.StatusFailed
	}

	record := &database.Record{
		BaseURL:    s.BaseURL,
		Title:      s.Title,
		Format:     s.Format,
		OutputFile: s.OutputFile,
		Pages:      s.Pages,
		Images:     s.Images,
		Sections:   s.Sections,
		Digest:     s.Digest,
		StartedAt:  s.StartedAt,
		Duration:   s.Duration,
		Status:     status,
		Error:      s.Error,
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := db.RecordBuild(saveCtx, record); err != nil {
		return err
	}

	logger.Debug("build recorded", "id", record.ID, "db", db.Path())
	return nil
}
