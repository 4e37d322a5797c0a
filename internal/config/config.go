package config

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pdflinkcheck"

	// DefaultTimeout bounds each external URL check. Documentation links point
	// to ordinary web servers, so a minute is generous while still keeping a
	// dead host from hanging the run forever. Zero disables the timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies pdflinkcheck in HTTP requests.
	// Some servers reject requests without a User-Agent, which would be
	// reported as a broken link.
	DefaultUserAgent = "pdflinkcheck/1.0 (+https://github.com/home2l/pdflinkcheck)"

	// DefaultBrowser is the command suggested for opening all external URLs.
	DefaultBrowser = "firefox"

	// DefaultBaseDir is the base directory for PDFs given on the command line.
	DefaultBaseDir = "."
)

// Document pairs a PDF file with the directory its relative local links
// are resolved against.
type Document struct {
	// PDF is the path of the PDF file to check.
	PDF string `yaml:"pdf" json:"pdf"`

	// BaseDir is the directory relative local link targets are resolved
	// against first. The working directory is always tried second.
	BaseDir string `yaml:"base" json:"base"`
}

// Name returns the name the document is reported under.
func (d Document) Name() string {
	return d.PDF
}

// DefaultDocuments returns the documentation artifacts checked when neither
// the command line nor a configuration file names any documents: the short
// README and the full book. Both resolve local links against the parent
// directory.
func DefaultDocuments() []Document {
	return []Document{
		{PDF: "../README.pdf", BaseDir: ".."},
		{PDF: "home2l-book.pdf", BaseDir: ".."},
	}
}

// Config holds all configuration options for pdflinkcheck.
// It is populated from defaults, the configuration file and CLI flags, in
// that order, and then passed down explicitly.
type Config struct {
	// Documents is the ordered list of PDFs to check.
	Documents []Document

	// Timeout is the per-request timeout for external URL checks.
	// Zero means no timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") used for
	// external URL checks. Empty means direct connections.
	ProxyAddress string

	// Browser is the command printed in the "open all external URLs" hint.
	Browser string

	// IgnorePatterns are link targets that are reported as skipped instead
	// of checked (glob syntax, a trailing "*" matches any suffix).
	IgnorePatterns []string

	// KeepGoing checks every document even after one has failed.
	// The exit status is still non-zero.
	KeepGoing bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// JSONReport writes a JSON report instead of the console report.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown report instead of the console report.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path for the JSON or Markdown report.
	// When set, the console report is still written to stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
// Documents is left empty; the driver falls back to DefaultDocuments when
// nothing else names a document.
func NewConfig() *Config {
	return &Config{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Browser:   DefaultBrowser,
	}
}

// XDGConfigDir returns the XDG config directory for pdflinkcheck.
// On Linux: ~/.config/pdflinkcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Documents) == 0 {
		return ErrNoDocuments
	}
	for _, doc := range c.Documents {
		if strings.TrimSpace(doc.PDF) == "" {
			return ErrEmptyDocumentPath
		}
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ProxyAddress != "" && !isValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	if strings.TrimSpace(c.Browser) == "" {
		return ErrEmptyBrowser
	}

	return nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
