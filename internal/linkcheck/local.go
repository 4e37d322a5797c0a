package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
)

// StripTrailingPeriods removes every trailing '.' from a local link target.
//
// LaTeX hyperref cannot produce a file link whose target has no period in
// it, so documentation sources append one to links pointing at extensionless
// files and directories ("doc/install" becomes "doc/install."). The period
// is not part of the real file name and must be removed before lookup.
func StripTrailingPeriods(target string) string {
	return strings.TrimRight(target, ".")
}

// LocalResolver looks up local link targets on the file system.
type LocalResolver struct {
	// WorkDir replaces the process working directory for the fallback
	// lookup. Empty means the process working directory.
	WorkDir string
}

// Exists reports whether target exists under baseDir or, failing that,
// under the working directory. It returns the path that was found.
func (l *LocalResolver) Exists(baseDir, target string) (string, bool) {
	for _, candidate := range l.candidates(baseDir, target) {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// candidates returns the paths tried for target, in order.
func (l *LocalResolver) candidates(baseDir, target string) []string {
	paths := make([]string, 0, 2)
	if baseDir != "" {
		paths = append(paths, filepath.Join(baseDir, target))
	}

	fallback := target
	if l.WorkDir != "" && !filepath.IsAbs(target) {
		fallback = filepath.Join(l.WorkDir, target)
	}
	if fallback == "" {
		fallback = "."
	}
	return append(paths, fallback)
}
