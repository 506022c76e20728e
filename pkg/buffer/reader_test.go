package buffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/pkg/types"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(nil, &buf)

	w.Start(types.FrontendQuery)
	w.AddInt16(-7)
	w.AddInt32(1 << 24)
	w.AddString("hello")
	w.AddNullTerminate()
	w.AddByte(0x2a)
	w.AddBytes([]byte{1, 2, 3})
	require.NoError(t, w.End())

	r := NewReader(nil, &buf, 0)
	typ, _, err := r.ReadTypedMsg()
	require.NoError(t, err)
	require.Equal(t, types.BackendMessage('Q'), typ)

	i16, err := r.GetInt16()
	require.NoError(t, err)
	require.Equal(t, int16(-7), i16)

	i32, err := r.GetInt32()
	require.NoError(t, err)
	require.Equal(t, int32(1<<24), i32)

	s, err := r.GetString()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	b, err := r.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x2a), b)

	rest, err := r.GetBytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, rest)
	require.True(t, r.Done())
}

func TestWriterEndPatchesLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(nil, &buf)

	w.Start(types.FrontendSync)
	require.NoError(t, w.End())

	// Type byte, then a 32-bit length covering the length word itself but
	// not the type byte.
	require.Equal(t, []byte{'S', 0, 0, 0, 4}, buf.Bytes())
}

func TestGetBytesNegativeLengthIsNull(t *testing.T) {
	r := &Reader{Msg: []byte{1, 2, 3}}

	b, err := r.GetBytes(-1)
	require.NoError(t, err)
	require.Nil(t, b)
	require.Len(t, r.Msg, 3)
}

func TestGetStringMissingTerminator(t *testing.T) {
	r := &Reader{Msg: []byte("unterminated")}

	_, err := r.GetString()
	require.Error(t, err)
}

func TestReadTypedMsgUnexpectedEOF(t *testing.T) {
	r := NewReader(nil, bytes.NewReader([]byte{'Z', 0, 0, 0, 9}), 0)

	_, _, err := r.ReadTypedMsg()
	require.Error(t, err)
}

func TestExpectDoneReportsTrailingBytes(t *testing.T) {
	r := &Reader{Msg: []byte{1}}
	require.Error(t, r.ExpectDone("CommandComplete"))

	r.Msg = nil
	require.NoError(t, r.ExpectDone("CommandComplete"))
}
