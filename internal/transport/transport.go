// Package transport establishes the byte-stream connection for one
// request attempt: TCP dial with a connect timeout, optional TLS
// handshake with SNI and a minimum protocol version, and per-operation
// read/write deadlines on the resulting connection.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tessark/gurl/internal/target"
)

// Options controls connection establishment and I/O deadlines.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MinTLSVersion  uint16
}

// Timeout errors surfaced when a deadline fires mid-operation. The
// connection is unusable afterwards and must be closed.
var (
	ErrReadTimeout  = errors.New("read timeout")
	ErrWriteTimeout = errors.New("write timeout")
)

// ConnectError wraps a failure to establish the TCP connection,
// including DNS resolution failures and refused or timed-out connects.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TLSError wraps a failed TLS handshake, including negotiation below
// the configured minimum protocol version.
type TLSError struct {
	Host string
	Err  error
}

func (e *TLSError) Error() string {
	return fmt.Sprintf("tls handshake with %s: %v", e.Host, e.Err)
}

func (e *TLSError) Unwrap() error { return e.Err }

// TLSVersion maps a version label ("1.0" through "1.3") to the
// crypto/tls constant. An empty label selects the 1.2 default.
func TLSVersion(label string) (uint16, error) {
	switch strings.TrimSpace(label) {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.0":
		return tls.VersionTLS10, nil
	case "1.1":
		return tls.VersionTLS11, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q: use 1.0, 1.1, 1.2 or 1.3", label)
	}
}

// Conn is an open connection bound to exactly one target, exclusively
// owned by the request attempt that dialed it. Close is idempotent and
// called on every exit path of the attempt.
type Conn struct {
	raw          net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Dial opens a connection to the target. HTTPS targets get a TLS
// handshake presenting the hostname for SNI and server-identity
// verification; a negotiated version below Options.MinTLSVersion fails
// the handshake.
func Dial(ctx context.Context, t target.ParsedURL, opts Options) (*Conn, error) {
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	raw, err := dialer.DialContext(ctx, "tcp", t.Address())
	if err != nil {
		return nil, &ConnectError{Addr: t.Address(), Err: err}
	}

	if t.Scheme == target.SchemeHTTPS {
		cfg := &tls.Config{
			ServerName: sniHost(t.Host),
			MinVersion: opts.MinTLSVersion,
		}
		tlsConn := tls.Client(raw, cfg)
		hsCtx := ctx
		if opts.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			hsCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
			defer cancel()
		}
		if err := tlsConn.HandshakeContext(hsCtx); err != nil {
			raw.Close()
			return nil, &TLSError{Host: t.Host, Err: err}
		}
		raw = tlsConn
	}

	return &Conn{
		raw:          raw,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
	}, nil
}

// Read applies the read deadline and reads from the connection. A
// deadline firing surfaces ErrReadTimeout.
func (c *Conn) Read(p []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.raw.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	n, err := c.raw.Read(p)
	if err != nil && isTimeout(err) {
		return n, fmt.Errorf("%w after %s", ErrReadTimeout, c.readTimeout)
	}
	return n, err
}

// Write applies the write deadline and writes to the connection. A
// deadline firing surfaces ErrWriteTimeout.
func (c *Conn) Write(p []byte) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	n, err := c.raw.Write(p)
	if err != nil && isTimeout(err) {
		return n, fmt.Errorf("%w after %s", ErrWriteTimeout, c.writeTimeout)
	}
	return n, err
}

// Close shuts the connection down. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sniHost strips IPv6 brackets; tls.Config.ServerName wants the bare name.
func sniHost(host string) string {
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
