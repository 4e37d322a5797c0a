package linkcheck

import (
	"errors"
	"io"
	"net"
	"testing"
)

// fakeProxy accepts one connection, reads the greeting and writes reply.
func fakeProxy(t *testing.T, reply []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		_, _ = conn.Write(reply)
	}()

	return ln.Addr().String()
}

// TestCheckProxy tests the SOCKS5 preflight.
func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("socks5 without auth", func(t *testing.T) {
		t.Parallel()

		addr := fakeProxy(t, []byte{0x05, 0x00})
		if err := CheckProxy(t.Context(), addr); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("socks5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := fakeProxy(t, []byte{0x05, 0xFF})
		if err := CheckProxy(t.Context(), addr); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("http server", func(t *testing.T) {
		t.Parallel()

		addr := fakeProxy(t, []byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		if err := CheckProxy(t.Context(), addr); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("closed port", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		if err := CheckProxy(t.Context(), addr); !errors.Is(err, ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", err)
		}
	})
}
