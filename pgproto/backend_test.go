package pgproto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
)

// scriptBackendMessage writes a message using a frontend-typed Writer (the
// wire byte is what matters, not which side the type constant names) and
// hands back a Reader positioned to parse the body, mirroring the
// frontend/backend type-reinterpretation internal/mock relies on.
func scriptBackendMessage(t *testing.T, bt types.BackendMessage, fill func(w *buffer.Writer)) *buffer.Reader {
	t.Helper()

	var buf bytes.Buffer
	w := buffer.NewWriter(nil, &buf)
	w.Start(types.FrontendMessage(byte(bt)))
	fill(w)
	require.NoError(t, w.End())

	r := buffer.NewReader(nil, &buf, 0)
	typ, err := r.ReadType()
	require.NoError(t, err)
	require.Equal(t, bt, typ)

	_, err = r.ReadUntypedMsg()
	require.NoError(t, err)

	return r
}

func TestParseAuthenticationMD5(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendAuth, func(w *buffer.Writer) {
		w.AddInt32(5)
		w.AddBytes([]byte{1, 2, 3, 4})
	})

	auth, err := ParseAuthentication(r)
	require.NoError(t, err)
	require.Equal(t, types.AuthMD5Password, auth.Type)
	require.Equal(t, []byte{1, 2, 3, 4}, auth.Salt)
}

func TestParseBackendKeyData(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendBackendKeyData, func(w *buffer.Writer) {
		w.AddInt32(111)
		w.AddInt32(222)
	})

	bkd, err := ParseBackendKeyData(r)
	require.NoError(t, err)
	require.Equal(t, int32(111), bkd.ProcessID)
	require.Equal(t, int32(222), bkd.SecretKey)
}

func TestParseRowDescriptionAndDataRow(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendRowDescription, func(w *buffer.Writer) {
		w.AddInt16(1)
		w.AddString("id")
		w.AddNullTerminate()
		w.AddInt32(0)
		w.AddInt16(0)
		w.AddInt32(int32(oid.Int4))
		w.AddInt16(-1)
		w.AddInt32(-1)
		w.AddInt16(int16(format.Text))
	})

	rd, err := ParseRowDescription(r)
	require.NoError(t, err)
	require.Len(t, rd.Fields, 1)
	require.Equal(t, "id", rd.Fields[0].Name)
	require.Equal(t, oid.Int4, rd.Fields[0].TypeOID)

	r2 := scriptBackendMessage(t, types.BackendDataRow, func(w *buffer.Writer) {
		w.AddInt16(2)
		w.AddInt32(3)
		w.AddBytes([]byte("123"))
		w.AddInt32(-1)
	})

	dr, err := ParseDataRow(r2)
	require.NoError(t, err)
	require.Len(t, dr.Values, 2)
	require.Equal(t, []byte("123"), dr.Values[0])
	require.Nil(t, dr.Values[1])
}

func TestParseNotificationResponse(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendNotificationResponse, func(w *buffer.Writer) {
		w.AddInt32(555)
		w.AddString("channel")
		w.AddNullTerminate()
		w.AddString("payload")
		w.AddNullTerminate()
	})

	n, err := ParseNotificationResponse(r)
	require.NoError(t, err)
	require.Equal(t, int32(555), n.ProcessID)
	require.Equal(t, "channel", n.Channel)
	require.Equal(t, "payload", n.Payload)
}

func TestParseErrorFields(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendErrorResponse, func(w *buffer.Writer) {
		w.AddByte('S')
		w.AddString("ERROR")
		w.AddNullTerminate()
		w.AddByte('C')
		w.AddString("42601")
		w.AddNullTerminate()
		w.AddByte(0)
	})

	fields, err := ParseErrorFields(r)
	require.NoError(t, err)
	require.Equal(t, "ERROR", fields['S'])
	require.Equal(t, "42601", fields['C'])
}

func TestParseDataRowZeroColumns(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendDataRow, func(w *buffer.Writer) {
		w.AddInt16(0)
	})

	dr, err := ParseDataRow(r)
	require.NoError(t, err)
	require.Empty(t, dr.Values)
}

func TestParseDataRowRejectsTrailingBytes(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendDataRow, func(w *buffer.Writer) {
		w.AddInt16(0)
		w.AddByte(0xff)
	})

	_, err := ParseDataRow(r)
	require.Error(t, err)
}

func TestParseRowDescriptionMaxColumns(t *testing.T) {
	const columns = 65535

	r := scriptBackendMessage(t, types.BackendRowDescription, func(w *buffer.Writer) {
		w.AddInt16(int16(-1)) // 65535 as an unsigned column count
		for i := 0; i < columns; i++ {
			w.AddString("c")
			w.AddNullTerminate()
			w.AddInt32(0)
			w.AddInt16(0)
			w.AddInt32(int32(oid.Text))
			w.AddInt16(-1)
			w.AddInt32(-1)
			w.AddInt16(int16(format.Text))
		}
	})

	rd, err := ParseRowDescription(r)
	require.NoError(t, err)
	require.Len(t, rd.Fields, columns)
}

func TestParseParameterStatusRejectsTrailingBytes(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendParameterStatus, func(w *buffer.Writer) {
		w.AddString("client_encoding")
		w.AddNullTerminate()
		w.AddString("UTF8")
		w.AddNullTerminate()
		w.AddByte(0xff)
	})

	_, err := ParseParameterStatus(r)
	require.Error(t, err)
}

func TestParseCommandCompleteRejectsTrailingBytes(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendCommandComplete, func(w *buffer.Writer) {
		w.AddString("SELECT 1")
		w.AddNullTerminate()
		w.AddByte(0xff)
	})

	_, err := ParseCommandComplete(r)
	require.Error(t, err)
}

func TestParseNotificationResponseRejectsTrailingBytes(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendNotificationResponse, func(w *buffer.Writer) {
		w.AddInt32(123)
		w.AddString("channel")
		w.AddNullTerminate()
		w.AddString("payload")
		w.AddNullTerminate()
		w.AddByte(0xff)
	})

	_, err := ParseNotificationResponse(r)
	require.Error(t, err)
}

func TestParseCopyResponseRejectsTrailingBytes(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendCopyInResponse, func(w *buffer.Writer) {
		w.AddByte(byte(format.Text))
		w.AddInt16(1)
		w.AddInt16(int16(format.Text))
		w.AddByte(0xff)
	})

	_, err := ParseCopyResponse(r)
	require.Error(t, err)
}

func TestParseErrorFieldsRejectsTrailingBytes(t *testing.T) {
	r := scriptBackendMessage(t, types.BackendErrorResponse, func(w *buffer.Writer) {
		w.AddByte('S')
		w.AddString("ERROR")
		w.AddNullTerminate()
		w.AddByte(0)
		w.AddByte(0xff)
	})

	_, err := ParseErrorFields(r)
	require.Error(t, err)
}
