package main

import (
	"fmt"
	"os"

	"github.com/home2l/pdflinkcheck/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it checks documents.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdflinkcheck [pdf...]",
		Short: "Check the hyperlinks in PDF documents",
		Long: `pdflinkcheck extracts every hyperlink from PDF documents and checks it.

Links to web pages (containing "://") are fetched and must answer with
HTTP status 200. All other links are local files, which must exist under
the base directory or the current directory. A trailing period is removed
from local targets before the lookup.

Without arguments, the documents listed in the configuration file are
checked, or ../README.pdf and home2l-book.pdf with base directory "..".

Documents are checked in order; the first failing document stops the run
unless --keep-going is given. The exit status is 1 if any document failed.

Examples:
  # Check the default documents
  pdflinkcheck

  # Check a PDF whose local links are relative to the parent directory
  pdflinkcheck -B .. home2l-book.pdf

  # Check several PDFs, skipping intranet links, and write a Markdown report
  pdflinkcheck -k -i 'https://intranet/*' -m -o report.md a.pdf b.pdf`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheckCmd,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and output")

	// Document selection
	cmd.Flags().StringP("base", "B", config.DefaultBaseDir,
		"Base directory for local links of the PDFs given as arguments")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pdflinkcheck in current or home directory)")

	// External link checks
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each external URL check (0 disables it)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header for external URL checks")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy for external URL checks (e.g., 127.0.0.1:9050)")

	// Behavior
	cmd.Flags().String("browser", config.DefaultBrowser,
		"Browser command in the hint for opening all external URLs")
	cmd.Flags().StringArrayP("ignore", "i", nil,
		"Do not check link targets matching this pattern (repeatable)")
	cmd.Flags().BoolP("keep-going", "k", false,
		"Check all documents even after one has failed")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
