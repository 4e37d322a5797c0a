package linkcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// maxRedirects matches what browsers tolerate before giving up.
	maxRedirects = 10

	// maxDrainBytes is read from a response body so the connection can be reused.
	maxDrainBytes = 64 * 1024
)

// RemoteResult is the outcome of fetching one external URL.
type RemoteResult struct {
	// StatusCode is the HTTP status, 0 if no response arrived.
	StatusCode int

	// Err is the transport error, if any.
	Err error
}

// OK reports whether the URL is reachable: a response with status exactly 200.
func (r RemoteResult) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// RemoteChecker fetches external URLs.
type RemoteChecker interface {
	CheckURL(ctx context.Context, rawURL string) RemoteResult
}

// HTTPChecker checks external URLs with an HTTP GET.
type HTTPChecker struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	proxyAddr string
	logger    *slog.Logger
}

// HTTPOption configures an HTTPChecker.
type HTTPOption func(*HTTPChecker)

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPChecker) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(c *HTTPChecker) {
		c.userAgent = ua
	}
}

// WithProxy routes requests through the SOCKS5 proxy at addr ("host:port").
func WithProxy(addr string) HTTPOption {
	return func(c *HTTPChecker) {
		c.proxyAddr = addr
	}
}

// WithHTTPClient uses client as is. Timeout and proxy options are ignored.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPChecker) {
		c.client = client
	}
}

// WithHTTPLogger sets the logger for request diagnostics.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPChecker) {
		c.logger = logger
	}
}

// NewHTTPChecker creates an HTTPChecker.
// It fails only if the proxy dialer cannot be created.
func NewHTTPChecker(opts ...HTTPOption) (*HTTPChecker, error) {
	c := &HTTPChecker{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		client, err := c.newClient()
		if err != nil {
			return nil, err
		}
		c.client = client
	}
	return c, nil
}

// newClient builds the HTTP client from the configured timeout and proxy.
func (c *HTTPChecker) newClient() (*http.Client, error) {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("unexpected default transport type")
	}
	transport = transport.Clone()

	if c.proxyAddr != "" {
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}, nil
}

// CheckURL fetches rawURL and reports the status.
// Every failure makes the URL unreachable; network failures are expected and
// logged at debug level, anything else is logged as a warning.
func (c *HTTPChecker) CheckURL(ctx context.Context, rawURL string) RemoteResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.logger.Warn("cannot build request", "url", rawURL, "error", err)
		return RemoteResult{Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isNetworkError(err) {
			c.logger.Debug("url unreachable", "url", rawURL, "error", err)
		} else {
			c.logger.Warn("unexpected error checking url", "url", rawURL, "error", err)
		}
		return RemoteResult{Err: err}
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)) //nolint:errcheck // Draining is best effort

	c.logger.Debug("url checked", "url", rawURL, "status", resp.StatusCode)
	return RemoteResult{StatusCode: resp.StatusCode}
}

// isNetworkError reports whether err is an expected transport failure:
// DNS, connection, TLS, timeout or cancellation.
func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var (
		netErr     net.Error
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &netErr),
		errors.As(err, &certErr),
		errors.As(err, &unknownCA),
		errors.As(err, &hostErr),
		errors.As(err, &invalidErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

var _ RemoteChecker = (*HTTPChecker)(nil)
