package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Proxy preflight errors.
var (
	// ErrProxyCannotConnect is returned when no TCP connection to the proxy
	// can be established.
	ErrProxyCannotConnect = errors.New("cannot connect to SOCKS5 proxy")

	// ErrProxyTimeout is returned when the proxy does not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to SOCKS5 proxy")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but does not
	// accept an unauthenticated SOCKS5 session.
	ErrProxyNotSOCKS5 = errors.New("proxy is not an unauthenticated SOCKS5 proxy")
)

// checkProxyTimeout bounds the preflight; it is a local handshake only.
const checkProxyTimeout = 2 * time.Second

const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// CheckProxy verifies that addr speaks SOCKS5 without authentication.
// Without this check a dead proxy makes every external link look broken.
func CheckProxy(ctx context.Context, addr string) error {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrProxyTimeout, addr)
		}
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	// Greeting: version, one method, "no authentication".
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s", ErrProxyTimeout, addr)
		}
		return fmt.Errorf("%w: %s", ErrProxyNotSOCKS5, addr)
	}
	if resp[0] != socks5Version || resp[1] != socks5AuthNone {
		return fmt.Errorf("%w: %s", ErrProxyNotSOCKS5, addr)
	}
	return nil
}
