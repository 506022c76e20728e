// Package session implements the client session engine: handshake,
// buffered send with save/restore, the message pump, cancellation and
// COPY sub-protocol support.
package session

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"log/slog"

	"github.com/pgwireclient/pgwire/auth"
	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pgtype"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/types"
	"github.com/pgwireclient/pgwire/transport"
)

// Session is not safe for concurrent use across goroutines: all state
// mutation happens on the caller's goroutine.
type Session struct {
	logger    *slog.Logger
	hooks     Hooks
	transport transport.Transport
	reader    *buffer.Reader

	sendBuf bytes.Buffer
	writer  *buffer.Writer

	Registry *pgtype.Registry

	expectedRFQ int
	bufferedRFQ int

	BackendKeyData    pgproto.BackendKeyData
	ParameterStatuses map[string]string
	TransactionStatus types.TransactionStatus
	open              bool
	authenticated     bool
	copyMode          copyMode

	NoticeCallback       func(pgerr.Fields)
	NotificationCallback func(pgproto.NotificationResponse) (brk bool)
}

type copyMode int

const (
	copyNone copyMode = iota
	copyIn
	copyOut
	copyBoth
)

// Options configures New.
type Options struct {
	Logger   *slog.Logger
	Hooks    Hooks
	Registry *pgtype.Registry
}

// New wraps an already-dialed Transport in a Session. The session is not
// open until Handshake succeeds.
func New(t transport.Transport, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hooks := opts.Hooks
	if hooks == nil {
		hooks = noopHooks{}
	}

	registry := opts.Registry
	if registry == nil {
		registry = pgtype.Default
	}

	s := &Session{
		logger:            logger,
		hooks:             hooks,
		transport:         t,
		reader:            buffer.NewReader(logger, t, 0),
		Registry:          registry,
		ParameterStatuses: make(map[string]string, 8),
	}
	s.writer = buffer.NewWriter(logger, &s.sendBuf)

	return s
}

// IsOpen reports whether the session has completed a handshake and not yet
// been closed or failed a transport operation.
func (s *Session) IsOpen() bool {
	return s.open
}

// IsAuthenticated reports whether the authentication exchange completed.
func (s *Session) IsAuthenticated() bool {
	return s.authenticated
}

// Handshake sends the optional SSLRequest, StartupMessage, drives the
// authenticator, and consumes BackendKeyData/ParameterStatus/ReadyForQuery
// until the handshake's own ReadyForQuery arrives.
func (s *Session) Handshake(ctx context.Context, params map[string]string, creds auth.Credentials, policy transport.SSLPolicy, tlsConfig *tls.Config) error {
	if policy == transport.SSLRequired && !s.transport.SupportsTLS() {
		return pgerr.NewTransportError(errors.New("SSL policy is Required but the transport cannot upgrade to TLS"))
	}

	if policy != transport.SSLNever && s.transport.SupportsTLS() {
		if err := s.transport.SendAll(pgproto.BuildSSLRequest()); err != nil {
			return err
		}

		reply := make([]byte, 1)
		if err := s.transport.ReceiveExact(reply); err != nil {
			return err
		}

		switch reply[0] {
		case 'S':
			upgraded, err := s.transport.TLSHandshake(ctx, tlsConfig)
			if err != nil {
				return err
			}

			s.transport = upgraded
			s.reader = buffer.NewReader(s.logger, upgraded, 0)

		case 'N':
			if policy == transport.SSLRequired {
				return pgerr.NewTransportError(errors.New("backend refused TLS but SSL policy is Required"))
			}

		default:
			return pgerr.NewProtocolError("unexpected byte in SSLRequest reply")
		}
	}

	if params == nil {
		params = map[string]string{}
	}
	if _, ok := params["user"]; !ok {
		params["user"] = creds.Username
	}

	if err := s.transport.SendAll(pgproto.BuildStartupMessage(params)); err != nil {
		return err
	}

	if err := auth.Negotiate(ctx, s.reader, s.transport.SendAll, creds); err != nil {
		s.open = false
		return err
	}
	s.authenticated = true

	for {
		t, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			s.open = false
			return err
		}
		s.hooks.FrameReceived(t)

		switch t {
		case types.BackendBackendKeyData:
			bkd, err := pgproto.ParseBackendKeyData(s.reader)
			if err != nil {
				return err
			}
			s.BackendKeyData = bkd

		case types.BackendParameterStatus:
			ps, err := pgproto.ParseParameterStatus(s.reader)
			if err != nil {
				return err
			}
			s.ParameterStatuses[ps.Name] = ps.Value

		case types.BackendReady:
			status, err := pgproto.ParseReadyForQuery(s.reader)
			if err != nil {
				return err
			}

			s.TransactionStatus = status
			s.open = true
			s.hooks.ReadyForQuery()
			return nil

		case types.BackendErrorResponse:
			fields, err := pgproto.ParseErrorFields(s.reader)
			if err != nil {
				return err
			}

			s.open = false
			return pgerr.NewBackendError(fields)

		default:
			s.open = false
			return pgerr.NewProtocolError("unexpected message during handshake: " + t.String())
		}
	}
}

// Terminate sends a best-effort Terminate message, flushes, and closes the
// transport. Idempotent: calling it again on an already-closed session is a
// no-op.
func (s *Session) Terminate() error {
	if !s.open {
		return nil
	}

	_ = s.sendDirect(pgproto.WriteTerminate)
	s.open = false
	return s.transport.Close()
}

// Close is an alias for Terminate, matching the io.Closer convention.
func (s *Session) Close() error {
	return s.Terminate()
}

// sendDirect frames a single message through a scratch writer and sends it
// immediately, bypassing the staged send buffer. Used for messages that
// participate in the COPY sub-protocol and for Terminate, none of which
// affect expected_rfq/buffered_rfq accounting.
func (s *Session) sendDirect(fn func(w *buffer.Writer) error) error {
	var buf bytes.Buffer
	w := buffer.NewWriter(s.logger, &buf)

	if err := fn(w); err != nil {
		return err
	}

	return s.transport.SendAll(buf.Bytes())
}
