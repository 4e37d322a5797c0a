package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pdflinkcheck"

// xdgConfigFile is the file name looked up inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .pdflinkcheck configuration file.
// Zero values mean "not set" and leave the built-in defaults alone.
type File struct {
	// Documents lists the PDFs to check together with their base directories.
	Documents []Document `yaml:"documents,omitempty"`

	// Timeout is the per-request timeout for external URL checks (e.g. "30s").
	// A pointer so that an explicit "0s" can disable the timeout.
	Timeout *time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Proxy is a SOCKS5 proxy address for external URL checks.
	Proxy string `yaml:"proxy,omitempty"`

	// Browser is the command used in the "open all external URLs" hint.
	Browser string `yaml:"browser,omitempty"`

	// Ignore lists link targets that are not checked.
	Ignore []string `yaml:"ignore,omitempty"`
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if len(f.Documents) > 0 {
		cfg.Documents = append([]Document(nil), f.Documents...)
	}
	if f.Timeout != nil {
		cfg.Timeout = *f.Timeout
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.Browser != "" {
		cfg.Browser = f.Browser
	}
	if len(f.Ignore) > 0 {
		cfg.IgnorePatterns = append([]string(nil), f.Ignore...)
	}
}

// LoadConfigFile loads the configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	// A document without a base directory resolves against the directory
	// of the configuration file, which is what a relative path in that file
	// is naturally read against.
	dir := filepath.Dir(path)
	for i := range cf.Documents {
		if cf.Documents[i].BaseDir == "" {
			cf.Documents[i].BaseDir = dir
		}
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .pdflinkcheck in the current directory
//  3. config.yaml in the XDG config directory
//  4. .pdflinkcheck in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
