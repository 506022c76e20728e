package pgproto

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

func TestBuildStartupMessageLayout(t *testing.T) {
	msg := BuildStartupMessage(map[string]string{"user": "alice", "database": "app"})

	length := binary.BigEndian.Uint32(msg[0:4])
	require.EqualValues(t, len(msg), length)

	version := binary.BigEndian.Uint32(msg[4:8])
	require.Equal(t, ProtocolVersion30, version)

	require.Equal(t, byte(0), msg[len(msg)-1])
	require.Contains(t, string(msg[8:]), "user\x00alice\x00")
	require.Contains(t, string(msg[8:]), "database\x00app\x00")
}

func TestBuildCancelRequestLayout(t *testing.T) {
	msg := BuildCancelRequest(4242, 99887766)

	require.Len(t, msg, 16)
	require.EqualValues(t, 16, binary.BigEndian.Uint32(msg[0:4]))
	require.EqualValues(t, 80877102, binary.BigEndian.Uint32(msg[4:8]))
	require.EqualValues(t, 4242, int32(binary.BigEndian.Uint32(msg[8:12])))
	require.EqualValues(t, 99887766, int32(binary.BigEndian.Uint32(msg[12:16])))
}

func TestBuildSSLRequestLayout(t *testing.T) {
	msg := BuildSSLRequest()

	require.Len(t, msg, 8)
	require.EqualValues(t, 8, binary.BigEndian.Uint32(msg[0:4]))
	require.EqualValues(t, 80877103, binary.BigEndian.Uint32(msg[4:8]))
}

func TestWriteParseLayout(t *testing.T) {
	var buf bytes.Buffer
	w := buffer.NewWriter(nil, &buf)

	require.NoError(t, WriteParse(w, "s1", "SELECT $1", []oid.Oid{oid.Int4}))

	raw := buf.Bytes()
	require.Equal(t, byte('P'), raw[0])

	length := binary.BigEndian.Uint32(raw[1:5])
	require.EqualValues(t, len(raw)-1, length)
}

func TestWriteQueryLayout(t *testing.T) {
	var buf bytes.Buffer
	w := buffer.NewWriter(nil, &buf)

	require.NoError(t, WriteQuery(w, "SELECT 1"))

	raw := buf.Bytes()
	require.Equal(t, byte('Q'), raw[0])
	require.Contains(t, string(raw), "SELECT 1\x00")
}
