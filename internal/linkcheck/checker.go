package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/home2l/pdflinkcheck/internal/config"
	"github.com/home2l/pdflinkcheck/internal/model"
	"github.com/home2l/pdflinkcheck/internal/pdflink"
)

// ErrBrokenLinks is returned when at least one document failed its check.
var ErrBrokenLinks = errors.New("broken links found")

// ExtractFunc scans a PDF for links.
type ExtractFunc func(path string) (*pdflink.Extraction, error)

// Checker checks all links of a document.
type Checker struct {
	remote  RemoteChecker
	local   *LocalResolver
	extract ExtractFunc
	ignore  []string
	logger  *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithIgnorePatterns skips targets matching any of patterns.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Checker) {
		c.ignore = patterns
	}
}

// WithLocalResolver replaces the default local resolver.
func WithLocalResolver(local *LocalResolver) Option {
	return func(c *Checker) {
		c.local = local
	}
}

// WithExtractFunc replaces pdflink.Extract.
func WithExtractFunc(fn ExtractFunc) Option {
	return func(c *Checker) {
		c.extract = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a Checker that verifies external links with remote.
func New(remote RemoteChecker, opts ...Option) *Checker {
	c := &Checker{
		remote:  remote,
		local:   &LocalResolver{},
		extract: pdflink.Extract,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckFile extracts the links of doc and checks each unique target once.
// It never fails: problems are recorded in the returned report. If ctx is
// cancelled, the remaining targets are left unchecked and the report is
// returned as is.
func (c *Checker) CheckFile(ctx context.Context, doc config.Document) *model.FileReport {
	report := model.NewFileReport(doc.Name(), doc.BaseDir)
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
	}()

	ext, err := c.extract(doc.PDF)
	if err != nil {
		c.logger.Debug("cannot open document", "document", doc.Name(), "error", err)
		report.OpenError = openErrorText(err)
		return report
	}

	report.Pages = ext.Pages
	report.Malformed = ext.Malformed
	c.logger.Debug("links extracted",
		"document", doc.Name(),
		"pages", ext.Pages,
		"links", ext.Links.Len(),
		"malformed", len(ext.Malformed),
	)

	for _, link := range ext.Links.Links() {
		if ctx.Err() != nil {
			break
		}
		report.AddResult(c.checkLink(ctx, doc.BaseDir, link))
	}

	return report
}

// checkLink checks one unique link target.
func (c *Checker) checkLink(ctx context.Context, baseDir string, link model.Link) model.LinkResult {
	res := model.LinkResult{Link: link, Resolved: link.Target}

	if pattern := ignored(c.ignore, link.Target); pattern != "" {
		c.logger.Debug("link ignored", "target", link.Target, "pattern", pattern)
		res.Skipped = true
		return res
	}

	if link.Kind == model.LinkKindExternal {
		rr := c.remote.CheckURL(ctx, link.Target)
		res.StatusCode = rr.StatusCode
		res.OK = rr.OK()
		switch {
		case rr.Err != nil:
			res.Error = rr.Err.Error()
		case !res.OK:
			res.Error = fmt.Sprintf("HTTP status %d", rr.StatusCode)
		}
		return res
	}

	res.Resolved = StripTrailingPeriods(link.Target)
	if found, ok := c.local.Exists(baseDir, res.Resolved); ok {
		res.OK = true
		res.FoundAt = found
	} else {
		res.Error = "no such file or directory"
	}
	c.logger.Debug("local link checked", "target", res.Resolved, "ok", res.OK)
	return res
}

// openErrorText strips the ErrOpen prefix so the console line reads
// "Cannot open PDF '<name>': <reason>".
func openErrorText(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, pdflink.ErrOpen.Error()+": "); ok && rest != "" {
		return rest
	}
	return msg
}
