// Package transport implements the bidirectional byte-stream adapter the
// session engine is built against. It is deliberately thin: the TLS upgrade
// lives here so that the session package never touches a net.Conn directly.
// A context bounds Dial and TLSHandshake only; the adapter sets no read or
// write deadlines and does not retry a failed read or write.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"

	"github.com/pgwireclient/pgwire/pgerr"
)

// SSLPolicy controls whether a session requires, prefers, or refuses a TLS
// upgrade during the handshake.
type SSLPolicy int

const (
	// SSLPreferred attempts SSLRequest and falls back to a plaintext
	// connection if the backend replies 'N'.
	SSLPreferred SSLPolicy = iota
	// SSLRequired attempts SSLRequest and fails the handshake if the
	// backend replies 'N'.
	SSLRequired
	// SSLNever never sends SSLRequest.
	SSLNever
)

func (p SSLPolicy) String() string {
	switch p {
	case SSLRequired:
		return "required"
	case SSLNever:
		return "never"
	default:
		return "preferred"
	}
}

// Transport is the capability-defined abstraction the session engine is
// parameterized on: plain TCP, Unix domain sockets, and TLS-wrapped streams
// all satisfy it identically.
type Transport interface {
	io.Reader
	io.Writer

	// SendAll writes the whole slice to the stream or fails.
	SendAll(b []byte) error
	// ReceiveExact fills out entirely or fails with a ConnectionClosedError
	// if the remote end closes the stream with bytes still wanted.
	ReceiveExact(out []byte) error
	// Duplicate opens a new, freshly connected transport to the same
	// endpoint, with TLS NOT performed, for use by CancelRequest.
	Duplicate(ctx context.Context) (Transport, error)
	// Close is idempotent and infallible from the caller's perspective.
	Close() error
	// TLSHandshake upgrades the stream to TLS and returns the replacement
	// transport to use from that point on.
	TLSHandshake(ctx context.Context, cfg *tls.Config) (Transport, error)
	// SupportsTLS reports whether TLSHandshake is meaningful for this
	// transport; a transport already wrapped in TLS returns false.
	SupportsTLS() bool

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// conn adapts a net.Conn (plain or *tls.Conn) to Transport.
type conn struct {
	net.Conn
	network string
	address string
	tls     bool
}

// Dial connects to address (e.g. "host:port" for "tcp", or a socket path
// for "unix") and returns the resulting Transport.
func Dial(ctx context.Context, network, address string) (Transport, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, pgerr.NewTransportError(err)
	}

	return &conn{Conn: nc, network: network, address: address}, nil
}

func (c *conn) SendAll(b []byte) error {
	_, err := c.Write(b)
	if err != nil {
		return pgerr.NewTransportError(err)
	}

	return nil
}

func (c *conn) ReceiveExact(out []byte) error {
	_, err := io.ReadFull(c, out)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return pgerr.NewConnectionClosedError(err)
		}

		return pgerr.NewTransportError(err)
	}

	return nil
}

func (c *conn) Duplicate(ctx context.Context) (Transport, error) {
	return Dial(ctx, c.network, c.address)
}

func (c *conn) Close() error {
	_ = c.Conn.Close()
	return nil
}

func (c *conn) SupportsTLS() bool {
	return !c.tls
}

func (c *conn) TLSHandshake(ctx context.Context, cfg *tls.Config) (Transport, error) {
	if c.tls {
		return c, nil
	}

	tc := tls.Client(c.Conn, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		return nil, pgerr.NewTransportError(err)
	}

	return &conn{Conn: tc, network: c.network, address: c.address, tls: true}, nil
}
