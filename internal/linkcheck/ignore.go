package linkcheck

import (
	"path/filepath"
	"strings"
)

// matchPattern reports whether target matches an ignore pattern.
// Patterns use path/filepath glob syntax. A trailing "*" additionally
// matches any suffix, separators included, so "https://intranet/*" covers
// every URL below that host.
func matchPattern(pattern, target string) bool {
	if pattern == target {
		return true
	}

	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.ContainsAny(prefix, "*?[") {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, target)
	return err == nil && matched
}

// ignored returns the first pattern matching target, or "".
func ignored(patterns []string, target string) string {
	for _, p := range patterns {
		if matchPattern(p, target) {
			return p
		}
	}
	return ""
}
