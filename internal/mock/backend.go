// Package mock implements an in-memory/loopback PostgreSQL backend double
// used to drive Session, auth and statement tests without a real server.
// It scripts backend replies over a real loopback TCP listener so
// transport.Dial and transport.Transport.Duplicate (exercised by the
// cancellation tests) behave exactly as they would against postgres.
package mock

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
	"github.com/pgwireclient/pgwire/transport"
)

// Backend is a loopback TCP listener standing in for a PostgreSQL backend.
type Backend struct {
	t        *testing.T
	listener net.Listener
	conns    chan net.Conn
}

// NewBackend starts listening on 127.0.0.1:0 and returns a Backend whose
// Addr can be passed to transport.Dial.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("mock backend: listen: %v", err)
	}

	b := &Backend{t: t, listener: ln, conns: make(chan net.Conn, 4)}

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}

			b.conns <- c
		}
	}()

	t.Cleanup(func() { _ = ln.Close() })
	return b
}

// Addr returns the "host:port" string new connections should dial.
func (b *Backend) Addr() string {
	return b.listener.Addr().String()
}

// Dial opens a real client-side transport.Transport to this backend, the
// same way Session.Handshake's caller would.
func (b *Backend) Dial(ctx context.Context) transport.Transport {
	b.t.Helper()

	tr, err := transport.Dial(ctx, "tcp", b.Addr())
	if err != nil {
		b.t.Fatalf("mock backend: dial: %v", err)
	}

	return tr
}

// Accept blocks until a connection arrives and returns a scripted Conn
// wrapping it.
func (b *Backend) Accept() *Conn {
	b.t.Helper()

	select {
	case c := <-b.conns:
		return &Conn{t: b.t, conn: c, reader: buffer.NewReader(nil, c, 0), writer: buffer.NewWriter(nil, c)}
	case <-time.After(5 * time.Second):
		b.t.Fatal("mock backend: timed out waiting for a connection")
		return nil
	}
}

// Conn is the backend side of one accepted connection, offering helpers to
// script backend replies message by message.
type Conn struct {
	t      *testing.T
	conn   net.Conn
	reader *buffer.Reader
	writer *buffer.Writer
}

// Close closes the underlying connection.
func (c *Conn) Close() { _ = c.conn.Close() }

// ReadStartupBody reads the pre-type-byte StartupMessage (or SSLRequest)
// body and returns its raw bytes.
func (c *Conn) ReadStartupBody() []byte {
	c.t.Helper()

	n, err := c.reader.ReadUntypedMsg()
	if err != nil {
		c.t.Fatalf("mock backend: read startup: %v", err)
	}

	body := make([]byte, n-4)
	copy(body, c.reader.Msg)
	return body
}

// ReadFrontend reads one typed frontend message and returns its type and
// reader positioned at the message body.
func (c *Conn) ReadFrontend() (types.FrontendMessage, *buffer.Reader) {
	c.t.Helper()

	t, err := c.reader.ReadType()
	if err != nil {
		c.t.Fatalf("mock backend: read frontend type: %v", err)
	}

	if _, err := c.reader.ReadUntypedMsg(); err != nil {
		c.t.Fatalf("mock backend: read frontend body: %v", err)
	}

	return types.FrontendMessage(t), c.reader
}

// SendRaw writes already-framed bytes straight to the wire (used for the
// single-byte SSLRequest reply, which carries no type byte or length).
func (c *Conn) SendRaw(b []byte) {
	c.t.Helper()

	if _, err := c.conn.Write(b); err != nil {
		c.t.Fatalf("mock backend: write raw: %v", err)
	}
}

func (c *Conn) flush(t types.BackendMessage, fill func(w *buffer.Writer)) {
	c.t.Helper()

	c.writer.Start(backendAsFrontend(t))
	fill(c.writer)
	if err := c.writer.End(); err != nil {
		c.t.Fatalf("mock backend: write %s: %v", t, err)
	}
}

// backendAsFrontend reinterprets a backend message type as a
// types.FrontendMessage so it can be handed to buffer.Writer.Start, which is
// typed for the frontend side; the wire byte is identical either way.
func backendAsFrontend(t types.BackendMessage) types.FrontendMessage {
	return types.FrontendMessage(byte(t))
}

// SendAuthOk scripts AuthenticationOk.
func (c *Conn) SendAuthOk() {
	c.flush(types.BackendAuth, func(w *buffer.Writer) { w.AddInt32(0) })
}

// SendAuthCleartext scripts AuthenticationCleartextPassword.
func (c *Conn) SendAuthCleartext() {
	c.flush(types.BackendAuth, func(w *buffer.Writer) { w.AddInt32(3) })
}

// SendAuthMD5 scripts AuthenticationMD5Password with the given 4-byte salt.
func (c *Conn) SendAuthMD5(salt [4]byte) {
	c.flush(types.BackendAuth, func(w *buffer.Writer) {
		w.AddInt32(5)
		w.AddBytes(salt[:])
	})
}

// SendBackendKeyData scripts BackendKeyData.
func (c *Conn) SendBackendKeyData(pid, key int32) {
	c.flush(types.BackendBackendKeyData, func(w *buffer.Writer) {
		w.AddInt32(pid)
		w.AddInt32(key)
	})
}

// SendParameterStatus scripts a single ParameterStatus message.
func (c *Conn) SendParameterStatus(name, value string) {
	c.flush(types.BackendParameterStatus, func(w *buffer.Writer) {
		w.AddString(name)
		w.AddNullTerminate()
		w.AddString(value)
		w.AddNullTerminate()
	})
}

// SendReadyForQuery scripts ReadyForQuery with the given status byte.
func (c *Conn) SendReadyForQuery(status types.TransactionStatus) {
	c.flush(types.BackendReady, func(w *buffer.Writer) { w.AddByte(byte(status)) })
}

// SendErrorResponse scripts an ErrorResponse from a field map keyed by the
// single-byte field identifiers.
func (c *Conn) SendErrorResponse(fields map[byte]string) {
	c.sendFields(types.BackendErrorResponse, fields)
}

// SendNoticeResponse scripts a NoticeResponse from the same field shape as
// SendErrorResponse.
func (c *Conn) SendNoticeResponse(fields map[byte]string) {
	c.sendFields(types.BackendNoticeResponse, fields)
}

func (c *Conn) sendFields(t types.BackendMessage, fields map[byte]string) {
	c.flush(t, func(w *buffer.Writer) {
		for k, v := range fields {
			w.AddByte(k)
			w.AddString(v)
			w.AddNullTerminate()
		}
		w.AddByte(0)
	})
}

// SendRowDescription scripts a RowDescription with one field per (name,
// oid) pair, all reported in the given format.
func (c *Conn) SendRowDescription(names []string, oids []oid.Oid, f format.Code) {
	c.flush(types.BackendRowDescription, func(w *buffer.Writer) {
		w.AddInt16(int16(len(names)))
		for i, name := range names {
			w.AddString(name)
			w.AddNullTerminate()
			w.AddInt32(0)   // table OID
			w.AddInt16(0)   // attribute number
			w.AddInt32(int32(oids[i]))
			w.AddInt16(-1) // type size (variable)
			w.AddInt32(-1) // type modifier
			w.AddInt16(int16(f))
		}
	})
}

// SendDataRow scripts a DataRow. A nil element of values encodes a SQL
// NULL.
func (c *Conn) SendDataRow(values [][]byte) {
	c.flush(types.BackendDataRow, func(w *buffer.Writer) {
		w.AddInt16(int16(len(values)))
		for _, v := range values {
			if v == nil {
				w.AddInt32(-1)
				continue
			}

			w.AddInt32(int32(len(v)))
			w.AddBytes(v)
		}
	})
}

// SendCommandComplete scripts CommandComplete with the given tag.
func (c *Conn) SendCommandComplete(tag string) {
	c.flush(types.BackendCommandComplete, func(w *buffer.Writer) {
		w.AddString(tag)
		w.AddNullTerminate()
	})
}

// SendEmptyQueryResponse scripts EmptyQueryResponse.
func (c *Conn) SendEmptyQueryResponse() {
	c.flush(types.BackendEmptyQuery, func(w *buffer.Writer) {})
}

// SendParseComplete scripts ParseComplete.
func (c *Conn) SendParseComplete() {
	c.flush(types.BackendParseComplete, func(w *buffer.Writer) {})
}

// SendBindComplete scripts BindComplete.
func (c *Conn) SendBindComplete() {
	c.flush(types.BackendBindComplete, func(w *buffer.Writer) {})
}

// SendCloseComplete scripts CloseComplete.
func (c *Conn) SendCloseComplete() {
	c.flush(types.BackendCloseComplete, func(w *buffer.Writer) {})
}

// SendNoData scripts NoData.
func (c *Conn) SendNoData() {
	c.flush(types.BackendNoData, func(w *buffer.Writer) {})
}

// SendPortalSuspended scripts PortalSuspended.
func (c *Conn) SendPortalSuspended() {
	c.flush(types.BackendPortalSuspended, func(w *buffer.Writer) {})
}

// SendParameterDescription scripts ParameterDescription.
func (c *Conn) SendParameterDescription(oids []oid.Oid) {
	c.flush(types.BackendParameterDescription, func(w *buffer.Writer) {
		w.AddInt16(int16(len(oids)))
		for _, o := range oids {
			w.AddInt32(int32(o))
		}
	})
}

// SendCopyInResponse scripts CopyInResponse.
func (c *Conn) SendCopyInResponse(overall format.Code, columnFormats []format.Code) {
	c.sendCopyResponse(types.BackendCopyInResponse, overall, columnFormats)
}

// SendCopyOutResponse scripts CopyOutResponse.
func (c *Conn) SendCopyOutResponse(overall format.Code, columnFormats []format.Code) {
	c.sendCopyResponse(types.BackendCopyOutResponse, overall, columnFormats)
}

func (c *Conn) sendCopyResponse(t types.BackendMessage, overall format.Code, columnFormats []format.Code) {
	c.flush(t, func(w *buffer.Writer) {
		w.AddByte(byte(overall))
		w.AddInt16(int16(len(columnFormats)))
		for _, f := range columnFormats {
			w.AddInt16(int16(f))
		}
	})
}

// SendCopyData scripts a CopyData frame carrying chunk verbatim.
func (c *Conn) SendCopyData(chunk []byte) {
	c.flush(types.BackendCopyData, func(w *buffer.Writer) { w.AddBytes(chunk) })
}

// SendCopyDone scripts CopyDone.
func (c *Conn) SendCopyDone() {
	c.flush(types.BackendCopyDone, func(w *buffer.Writer) {})
}

// SendNotificationResponse scripts NotificationResponse.
func (c *Conn) SendNotificationResponse(pid int32, channel, payload string) {
	c.flush(types.BackendNotificationResponse, func(w *buffer.Writer) {
		w.AddInt32(pid)
		w.AddString(channel)
		w.AddNullTerminate()
		w.AddString(payload)
		w.AddNullTerminate()
	})
}

// ReadCancelRequest reads a 16-byte CancelRequest off a freshly dialed
// duplicate transport (no type byte, no ordinary framing).
func (c *Conn) ReadCancelRequest() (length int, code uint32, pid, key int32) {
	c.t.Helper()

	n, err := c.reader.ReadUntypedMsg()
	if err != nil {
		c.t.Fatalf("mock backend: read cancel request: %v", err)
	}

	buf := c.reader.Msg
	code = uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	pid = int32(uint32(buf[4])<<24 | uint32(buf[5])<<16 | uint32(buf[6])<<8 | uint32(buf[7]))
	key = int32(uint32(buf[8])<<24 | uint32(buf[9])<<16 | uint32(buf[10])<<8 | uint32(buf[11]))
	return n, code, pid, key
}
