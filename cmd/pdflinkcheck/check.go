package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/home2l/pdflinkcheck/internal/config"
	"github.com/home2l/pdflinkcheck/internal/linkcheck"
	"github.com/home2l/pdflinkcheck/internal/log"
	"github.com/home2l/pdflinkcheck/internal/model"
	"github.com/home2l/pdflinkcheck/internal/report"
	"github.com/spf13/cobra"
)

// runCheckCmd executes the root command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags, in that order. Flags only override when given explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; a missing default one is fine.
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("browser") {
		if cfg.Browser, err = flags.GetString("browser"); err != nil {
			return nil, err
		}
	}

	// Ignore patterns from the file and the command line add up.
	ignore, err := flags.GetStringArray("ignore")
	if err != nil {
		return nil, err
	}
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, ignore...)

	if cfg.KeepGoing, err = flags.GetBool("keep-going"); err != nil {
		return nil, err
	}
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

	switch {
	case len(args) > 0:
		base, err := flags.GetString("base")
		if err != nil {
			return nil, err
		}
		cfg.Documents = make([]config.Document, len(args))
		for i, arg := range args {
			cfg.Documents[i] = config.Document{PDF: arg, BaseDir: base}
		}
	case len(cfg.Documents) == 0:
		cfg.Documents = config.DefaultDocuments()
	}

	return cfg, nil
}

// setupLogger creates the stderr logger. JSON reports on stdout get JSON
// logs so that both streams stay machine readable.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONReport {
		return log.NewJSONLogger(w, cfg.Verbose)
	}
	return log.NewLogger(w, cfg.Verbose)
}

// newChecker wires the link checker from the configuration.
func newChecker(cfg *config.Config, logger *slog.Logger) (*linkcheck.Checker, error) {
	httpOpts := []linkcheck.HTTPOption{
		linkcheck.WithTimeout(cfg.Timeout),
		linkcheck.WithUserAgent(cfg.UserAgent),
		linkcheck.WithHTTPLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		httpOpts = append(httpOpts, linkcheck.WithProxy(cfg.ProxyAddress))
	}

	remote, err := linkcheck.NewHTTPChecker(httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP checker: %w", err)
	}

	return linkcheck.New(remote,
		linkcheck.WithIgnorePatterns(cfg.IgnorePatterns),
		linkcheck.WithLogger(logger),
	), nil
}

// runCheck checks the configured documents in order and writes the reports.
// It returns linkcheck.ErrBrokenLinks if any checked document failed.
func runCheck(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	if cfg.ProxyAddress != "" {
		if err := linkcheck.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return fmt.Errorf("proxy check failed: %w", err)
		}
		logger.Debug("proxy verified", "address", cfg.ProxyAddress)
	}

	checker, err := newChecker(cfg, logger)
	if err != nil {
		return err
	}

	// A structured report on stdout replaces the console report.
	consoleOut := stdout
	if (cfg.JSONReport || cfg.MarkdownReport) && cfg.ReportFile == "" {
		consoleOut = io.Discard
	}
	console := report.NewSimpleWriter(consoleOut,
		report.WithBrowser(cfg.Browser),
		report.WithVerbose(cfg.Verbose),
	)

	run := model.NewRunReport(getVersion())
	logger.Debug("starting check", "documents", len(cfg.Documents), "timeout", cfg.Timeout, "proxy", cfg.ProxyAddress)

	for _, doc := range cfg.Documents {
		if _, err := console.WriteStart(doc.Name()); err != nil {
			return err
		}

		fileReport := checker.CheckFile(ctx, doc)
		run.Add(fileReport)

		if _, err := console.WriteFile(fileReport); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Debug("document checked",
			"document", doc.Name(),
			"ok", fileReport.OK(),
			"broken", fileReport.BrokenCount(),
			"duration", fileReport.Duration,
		)

		if !fileReport.OK() && !cfg.KeepGoing {
			break
		}
	}

	if err := outputReport(cfg, run, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !run.OK() {
		return linkcheck.ErrBrokenLinks
	}
	return nil
}

// outputReport writes the structured report, if one was requested, to the
// report file or stdout. Without a format a report file gets the console
// report.
func outputReport(cfg *config.Config, run *model.RunReport, stdout io.Writer) (err error) {
	if !cfg.JSONReport && !cfg.MarkdownReport && cfg.ReportFile == "" {
		return nil
	}

	output := stdout
	if cfg.ReportFile != "" {
		var f *os.File
		f, err = createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithBrowser(cfg.Browser), report.WithVerbose(cfg.Verbose))
	}

	_, err = w.Write(run)
	return err
}

// createReportFile creates or truncates path with owner-only permissions,
// creating parent directories as needed.
func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-chosen report path
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
