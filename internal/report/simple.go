package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/home2l/pdflinkcheck/internal/config"
	"github.com/home2l/pdflinkcheck/internal/model"
)

// SimpleWriter outputs the console report.
//
// The driver streams it: WriteStart before a document is checked and
// WriteFile once its report is complete. Write renders a whole run at once.
// Every problem is one line starting with "ERROR: " so the output can be
// grepped.
type SimpleWriter struct {
	baseWriter

	// browser is the command suggested for opening all external URLs.
	browser string

	// verbose adds skipped links and a per-document summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithBrowser sets the command in the "open all external URLs" hint.
func WithBrowser(browser string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.browser = browser
	}
}

// WithVerbose enables skipped link lines and a summary line per document.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		browser:    config.DefaultBrowser,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs every document of the run in check order.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder
	for _, f := range report.Files {
		w.writeStart(&sb, f.Document)
		w.writeFile(&sb, f)
	}
	return io.WriteString(w.output, sb.String())
}

// WriteStart announces that document is about to be checked.
func (w *SimpleWriter) WriteStart(document string) (int, error) {
	var sb strings.Builder
	w.writeStart(&sb, document)
	return io.WriteString(w.output, sb.String())
}

// WriteFile outputs the problems found in one document.
func (w *SimpleWriter) WriteFile(report *model.FileReport) (int, error) {
	var sb strings.Builder
	w.writeFile(&sb, report)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeStart(sb *strings.Builder, document string) {
	fmt.Fprintf(sb, "Checking '%s'...\n", document)
}

func (w *SimpleWriter) writeFile(sb *strings.Builder, report *model.FileReport) {
	if report.OpenError != "" {
		fmt.Fprintf(sb, "ERROR: Cannot open PDF '%s': %s.\n", report.Document, report.OpenError)
		return
	}

	for _, m := range report.Malformed {
		fmt.Fprintf(sb, "ERROR: Strange annotation on page %d: %s\n", m.Page, m.Action)
	}

	for _, res := range report.Results {
		switch {
		case res.Skipped:
			if w.verbose {
				fmt.Fprintf(sb, "SKIPPED: '%s' %s.\n", res.Target, res.PageList())
			}
		case !res.OK && res.Kind == model.LinkKindExternal:
			fmt.Fprintf(sb, "ERROR: Non-existing remote URL '%s' %s.\n", res.Target, res.PageList())
		case !res.OK:
			fmt.Fprintf(sb, "ERROR: Non-existing local file '%s' %s.\n", res.Resolved, res.PageList())
		}
	}

	if w.verbose {
		fmt.Fprintf(sb, "  %d page(s), %d link(s): %d broken, %d skipped, %d malformed annotation(s).\n",
			report.Pages, len(report.Results), report.BrokenCount(), report.SkippedCount(), len(report.Malformed))
	}

	w.writeBrowserHint(sb, report.ExternalURLs)
}

// writeBrowserHint prints a shell command opening every external URL.
func (w *SimpleWriter) writeBrowserHint(sb *strings.Builder, urls []string) {
	if len(urls) == 0 {
		return
	}

	quoted := make([]string, len(urls))
	for i, u := range urls {
		quoted[i] = ShellQuote(u)
	}
	sb.WriteString("  To open all external URLs in a web browser, run:\n")
	fmt.Fprintf(sb, "  $ %s %s\n", w.browser, strings.Join(quoted, " "))
}

// ShellQuote wraps s in single quotes for a POSIX shell.
// Embedded single quotes are written as '\''.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
