package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/home2l/pdflinkcheck/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxTargetLen keeps long URLs from breaking table layout.
const maxTargetLen = 80

// MarkdownWriter outputs reports in Markdown format.
// It uses GitHub-flavored alerts and a mermaid pie chart, so it renders
// best on GitHub or GitLab.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	for _, f := range report.Files {
		w.writeFile(md, f)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("PDF Link Check Report")
	md.PlainText("")

	status := "✅ Passed"
	if !report.OK() {
		status = "❌ Failed"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Version", report.Version},
			{"Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Documents", strconv.Itoa(len(report.Files))},
			{"Failed", strconv.Itoa(report.FailedCount())},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// linkTotals counts link outcomes over all documents.
type linkTotals struct {
	ok, broken, skipped, malformed int
}

func countLinks(report *model.RunReport) linkTotals {
	var t linkTotals
	for _, f := range report.Files {
		t.malformed += len(f.Malformed)
		for _, res := range f.Results {
			switch {
			case res.Skipped:
				t.skipped++
			case res.OK:
				t.ok++
			default:
				t.broken++
			}
		}
	}
	return t
}

// writeSummary writes the document table, the outcome chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, len(report.Files))
	for i, f := range report.Files {
		rows[i] = []string{
			"`" + f.Document + "`",
			strconv.Itoa(f.Pages),
			strconv.Itoa(f.ExternalCount()),
			strconv.Itoa(f.LocalCount()),
			strconv.Itoa(f.BrokenCount()),
			statusText(f),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Document", "Pages", "External", "Local", "Broken", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	totals := countLinks(report)
	if totals.ok+totals.broken+totals.skipped > 0 {
		w.writePieChart(md, totals)
	}

	switch failed := report.FailedCount(); {
	case failed > 0:
		md.Cautionf("%d of %d document(s) failed: %d broken link(s), %d malformed annotation(s).",
			failed, len(report.Files), totals.broken, totals.malformed)
	case totals.skipped > 0:
		md.Note("All checked links are valid. Some links were skipped by ignore patterns.")
	default:
		md.Tip("All links are valid.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of link outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, totals linkTotals) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Status"),
		piechart.WithShowData(true),
	)

	if totals.ok > 0 {
		chart.LabelAndIntValue("OK", uint64(totals.ok))
	}
	if totals.broken > 0 {
		chart.LabelAndIntValue("Broken", uint64(totals.broken))
	}
	if totals.skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(totals.skipped))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFile writes the section of one document.
func (w *MarkdownWriter) writeFile(md *markdown.Markdown, f *model.FileReport) {
	md.H2(f.Document)
	md.PlainText("")
	md.PlainTextf("Base directory: `%s`, checked in %s.", f.BaseDir, f.Duration.Round(time.Millisecond))
	md.PlainText("")

	if f.OpenError != "" {
		md.Cautionf("Cannot open PDF: %s", f.OpenError)
		md.PlainText("")
		return
	}

	if len(f.Malformed) > 0 {
		md.PlainText("### Malformed Annotations")
		md.PlainText("")
		rows := make([][]string, len(f.Malformed))
		for i, m := range f.Malformed {
			rows[i] = []string{strconv.Itoa(m.Page), "`" + m.Action + "`"}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Page", "Action"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	broken := f.Broken()
	if len(broken) > 0 {
		md.PlainText("### Broken Links")
		md.PlainText("")
		w.writeLinkTable(md, broken)
	}

	if len(f.Results) == 0 {
		md.PlainText("No links found.")
		md.PlainText("")
		return
	}

	md.Details("All links ("+strconv.Itoa(len(f.Results))+")", linkList(f.Results))
	md.PlainText("")
}

// writeLinkTable writes a table of link results.
func (w *MarkdownWriter) writeLinkTable(md *markdown.Markdown, results []model.LinkResult) {
	rows := make([][]string, len(results))
	for i, res := range results {
		reason := res.Error
		if reason == "" {
			reason = "-"
		}
		rows[i] = []string{
			truncateString(res.Resolved, maxTargetLen),
			kindLabel(res.Kind),
			res.PageList(),
			reason,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Target", "Kind", "Pages", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pdflinkcheck](https://github.com/home2l/pdflinkcheck)*")
}

// statusText returns the status cell of a document.
func statusText(f *model.FileReport) string {
	switch {
	case f.OpenError != "":
		return "❌ Cannot open"
	case !f.OK():
		return "❌ Failed"
	default:
		return "✅ OK"
	}
}

// kindLabel returns the title-cased kind name.
func kindLabel(kind model.LinkKind) string {
	return cases.Title(language.English).String(kind.String())
}

// linkList renders one line per link for the details block.
func linkList(results []model.LinkResult) string {
	var sb strings.Builder
	for _, res := range results {
		state := "ok"
		switch {
		case res.Skipped:
			state = "skipped"
		case !res.OK:
			state = "broken"
		}
		fmt.Fprintf(&sb, "- %s %s %s: %s\n", kindLabel(res.Kind), res.Target, res.PageList(), state)
	}
	return sb.String()
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
