package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mdlayher/vsock"
)

// Address schemes.
const (
	SchemeUnix = "unix"
	SchemeTCP  = "tcp"
	// SchemeVsock listens as vsock:<port> and dials as vsock:<cid>:<port>.
	SchemeVsock = "vsock"
	// SchemeHybridVsock dials a guest through a host-side Unix socket that
	// bridges to vsock with a "CONNECT <port>" handshake, as Firecracker
	// does: hvsock:<uds path>:<port>. Dial only.
	SchemeHybridVsock = "hvsock"
)

// Retry defaults for dialing.
const (
	dialMaxRetries  = 5
	dialBaseBackoff = 100 * time.Millisecond
)

func splitAddr(addr string) (scheme, rest string, err error) {
	scheme, rest, ok := strings.Cut(addr, ":")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("address %q: want <scheme>:<address>", addr)
	}
	return scheme, rest, nil
}

func parsePort(s string) (uint32, error) {
	port, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	return uint32(port), nil
}

// Listen opens a listener for addr (unix:/path, tcp:host:port or vsock:port).
func Listen(addr string) (net.Listener, error) {
	scheme, rest, err := splitAddr(addr)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemeUnix, SchemeTCP:
		l, err := net.Listen(scheme, rest)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		return l, nil
	case SchemeVsock:
		port, err := parsePort(rest)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		l, err := vsock.Listen(port, nil)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("listen %s: unsupported scheme %q", addr, scheme)
	}
}

type dialFunc func(ctx context.Context) (net.Conn, io.Reader, error)

// dialAddr connects to addr, retrying with exponential backoff on failure.
// Malformed addresses fail without retrying.
func dialAddr(ctx context.Context, addr string) (net.Conn, io.Reader, error) {
	scheme, rest, err := splitAddr(addr)
	if err != nil {
		return nil, nil, err
	}
	dial, err := dialerFor(scheme, rest)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	var lastErr error
	backoff := dialBaseBackoff

	for attempt := range dialMaxRetries {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("dial %s: %w", addr, ctx.Err())
		default:
		}

		conn, r, err := dial(ctx)
		if err == nil {
			return conn, r, nil
		}
		lastErr = err

		if attempt < dialMaxRetries-1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, nil, fmt.Errorf("dial %s: %w", addr, ctx.Err())
			}
			backoff *= 2
		}
	}

	return nil, nil, fmt.Errorf("dial %s after %d attempts: %w", addr, dialMaxRetries, lastErr)
}

// dialerFor parses the address for scheme. The returned reader is where
// frames must be read from; it differs from the connection only when a
// handshake may have buffered ahead.
func dialerFor(scheme, rest string) (dialFunc, error) {
	switch scheme {
	case SchemeUnix, SchemeTCP:
		return func(ctx context.Context) (net.Conn, io.Reader, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, scheme, rest)
			if err != nil {
				return nil, nil, err
			}
			return conn, conn, nil
		}, nil
	case SchemeVsock:
		cidStr, portStr, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("vsock address %q: want <cid>:<port>", rest)
		}
		cid, err := parsePort(cidStr)
		if err != nil {
			return nil, err
		}
		port, err := parsePort(portStr)
		if err != nil {
			return nil, err
		}
		return func(context.Context) (net.Conn, io.Reader, error) {
			conn, err := vsock.Dial(cid, port, nil)
			if err != nil {
				return nil, nil, err
			}
			return conn, conn, nil
		}, nil
	case SchemeHybridVsock:
		i := strings.LastIndex(rest, ":")
		if i < 0 {
			return nil, fmt.Errorf("hvsock address %q: want <uds path>:<port>", rest)
		}
		port, err := parsePort(rest[i+1:])
		if err != nil {
			return nil, err
		}
		udsPath := rest[:i]
		return func(ctx context.Context) (net.Conn, io.Reader, error) {
			return dialHybridVsock(ctx, udsPath, port)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
}

// dialHybridVsock connects to a vsock bridge UDS and sends the CONNECT
// handshake: send "CONNECT <port>\n", receive "OK <host_port>\n".
// The returned reader must be used for all subsequent reads so bytes the
// handshake buffered ahead are not lost.
func dialHybridVsock(ctx context.Context, udsPath string, port uint32) (net.Conn, io.Reader, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", udsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to UDS %s: %w", udsPath, err)
	}

	if _, err := fmt.Fprintf(conn, "CONNECT %d\n", port); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("send CONNECT: %w", err)
	}

	reader := bufio.NewReader(conn)
	response, err := reader.ReadString('\n')
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("read CONNECT response: %w", err)
	}

	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, "OK ") {
		conn.Close()
		return nil, nil, fmt.Errorf("vsock CONNECT failed: %s", response)
	}
	return conn, reader, nil
}
