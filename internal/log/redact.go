package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// MaskValue replaces a whole attribute value whose key names a secret.
const MaskValue = "***REDACTED***"

// urlMask replaces passwords and sensitive query values inside URLs.
const urlMask = "***"

// sensitiveKeywords mark attribute keys whose value is always masked.
// The bare word "key" is deliberately absent: it matches "cache_key" and
// friends far more often than an actual secret.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "cookie",
	"authorization", "credential", "api_key", "apikey",
}

// sensitiveParams are query parameter names whose values are masked in URLs.
var sensitiveParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"auth":         true,
	"key":          true,
	"apikey":       true,
	"api_key":      true,
	"password":     true,
	"sig":          true,
	"signature":    true,
	"secret":       true,
	"session":      true,
	"sessionid":    true,
}

// RedactHandler wraps an slog.Handler and masks secrets in attributes before
// they reach the wrapped handler.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler returns a RedactHandler writing to handler.
// A nil handler falls back to slog.Default().Handler().
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled reports whether the wrapped handler handles records at level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs returns a handler with the redacted attrs added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup returns a handler that nests attributes under name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, RedactURL(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindAny {
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, redactEmbeddedURLs(err.Error()))
		}
	}
	return a
}

// isSensitiveKey reports whether key names a secret.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RedactURL masks the password and sensitive query values of s if s is an
// absolute URL. Any other string is returned unchanged.
func RedactURL(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return s
	}

	changed := false
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), urlMask)
			changed = true
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		masked := false
		for name := range q {
			if sensitiveParams[strings.ToLower(name)] {
				q.Set(name, urlMask)
				masked = true
			}
		}
		if masked {
			u.RawQuery = q.Encode()
			changed = true
		}
	}

	if !changed {
		return s
	}
	// url.URL.String escapes the mask characters; undo that for readability.
	return strings.ReplaceAll(u.String(), url.QueryEscape(urlMask), urlMask)
}

// redactEmbeddedURLs applies RedactURL to every whitespace separated word of
// s. Errors from net/http quote the URL they failed on, so quotes are kept.
func redactEmbeddedURLs(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		trimmed := strings.Trim(w, `"':`)
		if redacted := RedactURL(trimmed); redacted != trimmed {
			words[i] = strings.Replace(w, trimmed, redacted, 1)
		}
	}
	return strings.Join(words, " ")
}

// NewLogger returns a text logger writing to w with redaction enabled.
// verbose selects Debug level; otherwise only warnings and errors are shown.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
