// Package pgproto implements the message codec layer: a `build`-style
// function per frontend message and a `parse`-style function per backend
// message, expressed directly in terms of pkg/buffer's wire primitives.
package pgproto

import (
	"encoding/binary"

	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
)

// ProtocolVersion30 is the single 32-bit word identifying frontend/backend
// protocol version 3.0 (major=3, minor=0).
const ProtocolVersion30 uint32 = 3<<16 | 0

// cancelRequestCode and sslRequestCode are the magic "version" words that,
// in place of a real protocol version, identify a CancelRequest or
// SSLRequest during the pre-type-byte phase of the handshake.
const (
	cancelRequestCode uint32 = 80877102
	sslRequestCode    uint32 = 80877103
)

// BuildStartupMessage frames a StartupMessage: no type byte, a length
// prefix, the protocol version, then NUL-terminated key/value pairs
// terminated by a single NUL byte. params must include "user".
func BuildStartupMessage(params map[string]string) []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, ProtocolVersion30)

	for key, value := range params {
		body = append(body, key...)
		body = append(body, 0)
		body = append(body, value...)
		body = append(body, 0)
	}
	body = append(body, 0)

	return frameUntyped(body)
}

// BuildSSLRequest frames the 8-byte SSLRequest message.
func BuildSSLRequest() []byte {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, sslRequestCode)
	return frameUntyped(body)
}

// BuildCancelRequest frames the 16-byte CancelRequest message.
func BuildCancelRequest(processID, secretKey int32) []byte {
	body := make([]byte, 12)
	binary.BigEndian.PutUint32(body[0:4], cancelRequestCode)
	binary.BigEndian.PutUint32(body[4:8], uint32(processID))
	binary.BigEndian.PutUint32(body[8:12], uint32(secretKey))
	return frameUntyped(body)
}

// frameUntyped prepends the 32-bit self-inclusive length prefix used by the
// three pre-authentication messages that carry no type byte.
func frameUntyped(body []byte) []byte {
	framed := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(framed, uint32(len(framed)))
	copy(framed[4:], body)
	return framed
}

// WritePassword stages a PasswordMessage.
func WritePassword(w *buffer.Writer, password string) error {
	w.Start(types.FrontendPassword)
	w.AddString(password)
	w.AddNullTerminate()
	return w.End()
}

// WriteParse stages a Parse message.
func WriteParse(w *buffer.Writer, statement, query string, paramOIDs []oid.Oid) error {
	w.Start(types.FrontendParse)
	w.AddString(statement)
	w.AddNullTerminate()
	w.AddString(query)
	w.AddNullTerminate()
	w.AddInt16(int16(len(paramOIDs)))
	for _, o := range paramOIDs {
		w.AddInt32(int32(o))
	}
	return w.End()
}

// WriteBind stages a Bind message. params[i] == nil encodes a SQL NULL
// (length prefix -1); paramFormats/resultFormats may be empty (meaning
// "all text") or length 1 (meaning "all this format") or length
// len(params)/len(resultFormats).
func WriteBind(w *buffer.Writer, portal, statement string, paramFormats []format.Code, params [][]byte, resultFormats []format.Code) error {
	w.Start(types.FrontendBind)
	w.AddString(portal)
	w.AddNullTerminate()
	w.AddString(statement)
	w.AddNullTerminate()

	w.AddInt16(int16(len(paramFormats)))
	for _, f := range paramFormats {
		w.AddInt16(int16(f))
	}

	w.AddInt16(int16(len(params)))
	for _, p := range params {
		if p == nil {
			w.AddInt32(-1)
			continue
		}

		w.AddInt32(int32(len(p)))
		w.AddBytes(p)
	}

	w.AddInt16(int16(len(resultFormats)))
	for _, f := range resultFormats {
		w.AddInt16(int16(f))
	}

	return w.End()
}

// WriteDescribe stages a Describe message for a statement or portal.
func WriteDescribe(w *buffer.Writer, kind buffer.PrepareType, name string) error {
	w.Start(types.FrontendDescribe)
	w.AddByte(byte(kind))
	w.AddString(name)
	w.AddNullTerminate()
	return w.End()
}

// WriteExecute stages an Execute message. maxRows == 0 means "no limit".
func WriteExecute(w *buffer.Writer, portal string, maxRows int32) error {
	w.Start(types.FrontendExecute)
	w.AddString(portal)
	w.AddNullTerminate()
	w.AddInt32(maxRows)
	return w.End()
}

// WriteClose stages a Close message for a statement or portal.
func WriteClose(w *buffer.Writer, kind buffer.PrepareType, name string) error {
	w.Start(types.FrontendClose)
	w.AddByte(byte(kind))
	w.AddString(name)
	w.AddNullTerminate()
	return w.End()
}

// WriteFlush stages an empty-bodied Flush message.
func WriteFlush(w *buffer.Writer) error {
	w.Start(types.FrontendFlush)
	return w.End()
}

// WriteSync stages an empty-bodied Sync message.
func WriteSync(w *buffer.Writer) error {
	w.Start(types.FrontendSync)
	return w.End()
}

// WriteQuery stages a simple-query Query message.
func WriteQuery(w *buffer.Writer, sql string) error {
	w.Start(types.FrontendQuery)
	w.AddString(sql)
	w.AddNullTerminate()
	return w.End()
}

// WriteCopyData stages a chunk of COPY data.
func WriteCopyData(w *buffer.Writer, chunk []byte) error {
	w.Start(types.FrontendCopyData)
	w.AddBytes(chunk)
	return w.End()
}

// WriteCopyDone stages an empty-bodied CopyDone message.
func WriteCopyDone(w *buffer.Writer) error {
	w.Start(types.FrontendCopyDone)
	return w.End()
}

// WriteCopyFail stages a CopyFail message carrying the given error message.
func WriteCopyFail(w *buffer.Writer, message string) error {
	w.Start(types.FrontendCopyFail)
	w.AddString(message)
	w.AddNullTerminate()
	return w.End()
}

// WriteTerminate stages an empty-bodied Terminate message.
func WriteTerminate(w *buffer.Writer) error {
	w.Start(types.FrontendTerminate)
	return w.End()
}
