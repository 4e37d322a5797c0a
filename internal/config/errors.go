package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Callers use errors.Is() to tell them apart; the messages are meant to be
// shown to the user as-is.
var (
	// ErrNoDocuments is returned when there is no PDF document to check.
	ErrNoDocuments = errors.New("no documents specified: pass PDF paths or list them under 'documents' in the config file")

	// ErrEmptyDocumentPath is returned when a document entry has no PDF path.
	ErrEmptyDocumentPath = errors.New("invalid document: pdf path must not be empty")

	// ErrInvalidTimeout is returned when the HTTP timeout is negative.
	// Zero disables the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrEmptyBrowser is returned when the browser command is blank.
	ErrEmptyBrowser = errors.New("invalid browser command: must not be empty")
)
