package linkcheck

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/home2l/pdflinkcheck/internal/config"
	"github.com/home2l/pdflinkcheck/internal/pdflink/pdftest"
)

// stubRemote answers URL checks from a map and records every request.
type stubRemote struct {
	mu      sync.Mutex
	results map[string]RemoteResult
	calls   []string
}

func (s *stubRemote) CheckURL(_ context.Context, rawURL string) RemoteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, rawURL)
	if r, ok := s.results[rawURL]; ok {
		return r
	}
	return RemoteResult{StatusCode: http.StatusOK}
}

// writeFile creates dir/name with some content.
func writeFile(t *testing.T, dir, name string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o600); err != nil {
		t.Fatal(err)
	}
}

// TestStripTrailingPeriods tests removal of hyperref's trailing periods.
func TestStripTrailingPeriods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"doc/install.", "doc/install"},
		{"doc/install...", "doc/install"},
		{"README.pdf", "README.pdf"},
		{"a.b.", "a.b"},
		{".", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := StripTrailingPeriods(tt.in); got != tt.want {
				t.Errorf("StripTrailingPeriods(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestLocalResolver tests the base directory and working directory lookup.
func TestLocalResolver(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	work := t.TempDir()
	writeFile(t, base, "doc/install")
	writeFile(t, work, "tools/setup.sh")
	writeFile(t, base, "both.txt")
	writeFile(t, work, "both.txt")

	r := &LocalResolver{WorkDir: work}

	t.Run("found under base directory", func(t *testing.T) {
		t.Parallel()

		found, ok := r.Exists(base, "doc/install")
		if !ok {
			t.Fatal("expected target to exist")
		}
		if found != filepath.Join(base, "doc/install") {
			t.Errorf("unexpected path %q", found)
		}
	})

	t.Run("found under working directory", func(t *testing.T) {
		t.Parallel()

		found, ok := r.Exists(base, "tools/setup.sh")
		if !ok {
			t.Fatal("expected target to exist")
		}
		if found != filepath.Join(work, "tools/setup.sh") {
			t.Errorf("unexpected path %q", found)
		}
	})

	t.Run("base directory wins", func(t *testing.T) {
		t.Parallel()

		found, _ := r.Exists(base, "both.txt")
		if found != filepath.Join(base, "both.txt") {
			t.Errorf("expected base directory match, got %q", found)
		}
	})

	t.Run("directories count", func(t *testing.T) {
		t.Parallel()

		if _, ok := r.Exists(base, "doc"); !ok {
			t.Error("expected directory to exist")
		}
	})

	t.Run("absolute target", func(t *testing.T) {
		t.Parallel()

		abs := filepath.Join(work, "tools/setup.sh")
		if _, ok := r.Exists(base, abs); !ok {
			t.Error("expected absolute target to exist")
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()

		if _, ok := r.Exists(base, "nope.txt"); ok {
			t.Error("expected missing target")
		}
	})
}

// TestMatchPattern tests ignore pattern matching.
func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		target  string
		want    bool
	}{
		{"https://intranet/*", "https://intranet/wiki/page", true},
		{"https://intranet/*", "https://internet/", false},
		{"*.onion", "secret.onion", true},
		{"doc/?.txt", "doc/a.txt", true},
		{"mailto:*", "mailto:user@example.com", true},
		{"exact.txt", "exact.txt", true},
		{"exact.txt", "other.txt", false},
		{"[", "[", true},
		{"[", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.target, func(t *testing.T) {
			t.Parallel()
			if got := matchPattern(tt.pattern, tt.target); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.target, got, tt.want)
			}
		})
	}
}

// TestHTTPChecker tests reachability against a local server.
func TestHTTPChecker(t *testing.T) {
	t.Parallel()

	var gotUA string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotUA = r.UserAgent()
		mu.Unlock()

		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("hello"))
		case "/redirect":
			http.Redirect(w, r, "/ok", http.StatusFound)
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		case "/created":
			w.WriteHeader(http.StatusCreated)
		case "/slow":
			time.Sleep(500 * time.Millisecond)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	checker, err := NewHTTPChecker(WithUserAgent("pdflinkcheck-test"), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("200 is reachable", func(t *testing.T) {
		res := checker.CheckURL(t.Context(), srv.URL+"/ok")
		if !res.OK() {
			t.Errorf("expected reachable, got %+v", res)
		}
		mu.Lock()
		defer mu.Unlock()
		if gotUA != "pdflinkcheck-test" {
			t.Errorf("expected user agent to be sent, got %q", gotUA)
		}
	})

	t.Run("redirect to 200 is reachable", func(t *testing.T) {
		if res := checker.CheckURL(t.Context(), srv.URL+"/redirect"); !res.OK() {
			t.Errorf("expected reachable, got %+v", res)
		}
	})

	t.Run("404 is unreachable", func(t *testing.T) {
		res := checker.CheckURL(t.Context(), srv.URL+"/missing")
		if res.OK() {
			t.Error("expected unreachable")
		}
		if res.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", res.StatusCode)
		}
	})

	t.Run("other 2xx is unreachable", func(t *testing.T) {
		res := checker.CheckURL(t.Context(), srv.URL+"/created")
		if res.OK() {
			t.Errorf("expected status 201 to count as unreachable, got %+v", res)
		}
	})

	t.Run("redirect loop is unreachable", func(t *testing.T) {
		res := checker.CheckURL(t.Context(), srv.URL+"/loop")
		if res.OK() || res.Err == nil {
			t.Errorf("expected redirect error, got %+v", res)
		}
	})

	t.Run("timeout is unreachable", func(t *testing.T) {
		fast, err := NewHTTPChecker(WithTimeout(50 * time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res := fast.CheckURL(t.Context(), srv.URL+"/slow")
		if res.OK() || res.Err == nil {
			t.Errorf("expected timeout error, got %+v", res)
		}
	})
}

// TestHTTPCheckerConnectionRefused tests that a closed port is unreachable
// and logged at debug level only.
func TestHTTPCheckerConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	checker, err := NewHTTPChecker(WithHTTPLogger(logger))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := checker.CheckURL(t.Context(), url)
	if res.OK() || res.Err == nil {
		t.Errorf("expected connection error, got %+v", res)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no warning for a network error, got %q", buf.String())
	}
}

// TestHTTPCheckerUnexpectedError tests that non-network failures are warned about.
func TestHTTPCheckerUnexpectedError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	checker, err := NewHTTPChecker(WithHTTPLogger(logger))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := checker.CheckURL(t.Context(), "gopher://example.com/")
	if res.OK() {
		t.Error("expected unsupported scheme to be unreachable")
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

// TestHTTPCheckerProxy tests that a proxy address produces a working checker
// that actually routes through the proxy.
func TestHTTPCheckerProxy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	proxyAddr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	checker, err := NewHTTPChecker(WithProxy(proxyAddr), WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The proxy port is closed, so even a well-known host cannot be reached.
	res := checker.CheckURL(t.Context(), "http://example.com/")
	if res.OK() || res.Err == nil {
		t.Errorf("expected proxy connection error, got %+v", res)
	}
}

// TestIsNetworkError tests the error classification.
func TestIsNetworkError(t *testing.T) {
	t.Parallel()

	if !isNetworkError(context.DeadlineExceeded) {
		t.Error("expected deadline to be a network error")
	}
	if isNetworkError(errors.New("boom")) {
		t.Error("did not expect a plain error to be a network error")
	}
}

// TestCheckFile tests checking a complete document.
func TestCheckFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	work := t.TempDir()
	writeFile(t, base, "doc/install")
	writeFile(t, work, "CHANGES")

	const (
		good = "https://home2l.org/"
		dead = "https://home2l.org/dead"
	)
	pdfPath := pdftest.New().
		Page(pdftest.URILink(good), pdftest.FileLink("doc/install.")).
		Pages(1).
		Page(pdftest.URILink(dead), pdftest.FileLink("CHANGES.")).
		Pages(3).
		Page(pdftest.URILink(dead), pdftest.FileLink("missing.txt")).
		WriteFile(t, t.TempDir(), "book.pdf")

	remote := &stubRemote{results: map[string]RemoteResult{
		dead: {StatusCode: http.StatusNotFound},
	}}
	checker := New(remote, WithLocalResolver(&LocalResolver{WorkDir: work}))

	report := checker.CheckFile(t.Context(), config.Document{PDF: pdfPath, BaseDir: base})

	if report.OpenError != "" {
		t.Fatalf("unexpected open error: %s", report.OpenError)
	}
	if report.Pages != 7 {
		t.Errorf("expected 7 pages, got %d", report.Pages)
	}
	if len(report.Results) != 5 {
		t.Fatalf("expected 5 unique targets, got %d", len(report.Results))
	}
	if report.OK() {
		t.Error("expected document to fail")
	}

	broken := report.Broken()
	if len(broken) != 2 {
		t.Fatalf("expected 2 broken links, got %v", broken)
	}
	if broken[0].Target != dead || !slices.Equal(broken[0].Pages, []int{3, 7}) {
		t.Errorf("unexpected broken external link %+v", broken[0])
	}
	if broken[1].Target != "missing.txt" || !slices.Equal(broken[1].Pages, []int{7}) {
		t.Errorf("unexpected broken local link %+v", broken[1])
	}

	if !slices.Equal(remote.calls, []string{good, dead}) {
		t.Errorf("expected each URL to be fetched once, got %v", remote.calls)
	}
	if !slices.Equal(report.ExternalURLs, []string{good, dead}) {
		t.Errorf("unexpected external urls %v", report.ExternalURLs)
	}

	for _, res := range report.Results {
		if res.Target == "doc/install." {
			if res.Resolved != "doc/install" || !res.OK {
				t.Errorf("expected stripped local target to be found, got %+v", res)
			}
		}
		if res.Target == "CHANGES." && res.FoundAt != filepath.Join(work, "CHANGES") {
			t.Errorf("expected working directory fallback, got %+v", res)
		}
	}
}

// TestCheckFileIgnore tests that ignored targets are skipped and not fetched.
func TestCheckFileIgnore(t *testing.T) {
	t.Parallel()

	pdfPath := pdftest.New().
		Page(pdftest.URILink("https://intranet/wiki"), pdftest.URILink("mailto://nobody")).
		WriteFile(t, t.TempDir(), "book.pdf")

	remote := &stubRemote{results: map[string]RemoteResult{
		"https://intranet/wiki": {StatusCode: http.StatusNotFound},
	}}
	checker := New(remote, WithIgnorePatterns([]string{"https://intranet/*"}))

	report := checker.CheckFile(t.Context(), config.Document{PDF: pdfPath, BaseDir: "."})
	if !report.OK() {
		t.Errorf("expected ignored link not to fail, got %+v", report.Broken())
	}
	if report.SkippedCount() != 1 {
		t.Errorf("expected 1 skipped link, got %d", report.SkippedCount())
	}
	if slices.Contains(remote.calls, "https://intranet/wiki") {
		t.Error("expected ignored URL not to be fetched")
	}
}

// TestCheckFileMalformed tests that malformed annotations fail the document.
func TestCheckFileMalformed(t *testing.T) {
	t.Parallel()

	pdfPath := pdftest.New().
		Pages(1).
		Page(pdftest.NamedActionLink("PrevPage")).
		WriteFile(t, t.TempDir(), "book.pdf")

	report := New(&stubRemote{}).CheckFile(t.Context(), config.Document{PDF: pdfPath, BaseDir: "."})
	if report.OK() {
		t.Error("expected malformed annotation to fail the document")
	}
	if len(report.Malformed) != 1 || report.Malformed[0].Page != 2 {
		t.Errorf("expected one malformed annotation on page 2, got %v", report.Malformed)
	}
}

// TestCheckFileNoLinks tests that a document without annotations passes.
func TestCheckFileNoLinks(t *testing.T) {
	t.Parallel()

	pdfPath := pdftest.New().Pages(2).WriteFile(t, t.TempDir(), "empty.pdf")

	remote := &stubRemote{}
	report := New(remote).CheckFile(t.Context(), config.Document{PDF: pdfPath, BaseDir: "."})
	if !report.OK() {
		t.Errorf("expected document to pass, got %+v", report)
	}
	if len(report.Results) != 0 || len(remote.calls) != 0 {
		t.Errorf("expected nothing to check, got %d results and %d calls", len(report.Results), len(remote.calls))
	}
}

// TestCheckFileOpenError tests that an unreadable document is reported.
func TestCheckFileOpenError(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	report := New(&stubRemote{}).CheckFile(t.Context(), config.Document{PDF: missing, BaseDir: "."})

	if report.OpenError == "" {
		t.Fatal("expected open error")
	}
	if strings.HasPrefix(report.OpenError, "cannot open PDF") {
		t.Errorf("expected the reason without prefix, got %q", report.OpenError)
	}
	if report.OK() {
		t.Error("expected document to fail")
	}
	if report.Document != missing {
		t.Errorf("expected document name %q, got %q", missing, report.Document)
	}
}

// TestCheckFileCancelled tests that a cancelled context stops checking.
func TestCheckFileCancelled(t *testing.T) {
	t.Parallel()

	pdfPath := pdftest.New().
		Page(pdftest.URILink("https://a.example"), pdftest.URILink("https://b.example")).
		WriteFile(t, t.TempDir(), "book.pdf")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	remote := &stubRemote{}
	report := New(remote).CheckFile(ctx, config.Document{PDF: pdfPath, BaseDir: "."})
	if len(remote.calls) != 0 {
		t.Errorf("expected no requests after cancellation, got %v", remote.calls)
	}
	if report.Pages != 1 {
		t.Errorf("expected extraction to complete, got %d pages", report.Pages)
	}
}
