package session

import (
	"context"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/auth"
	"github.com/pgwireclient/pgwire/internal/mock"
	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
	"github.com/pgwireclient/pgwire/transport"
)

func handshakeOK(t *testing.T, conn *mock.Conn) {
	t.Helper()

	conn.ReadStartupBody()
	conn.SendAuthOk()
	conn.SendBackendKeyData(4242, 99887766)
	conn.SendParameterStatus("server_version", "16.1")
	conn.SendReadyForQuery(types.TransactionIdle)
}

func TestHandshakeTrust(t *testing.T) {
	backend := mock.NewBackend(t)
	tr := backend.Dial(context.Background())

	sess := New(tr, Options{Logger: slogt.New(t)})

	done := make(chan error, 1)
	go func() {
		done <- sess.Handshake(context.Background(), map[string]string{"user": "alice"}, auth.Credentials{Username: "alice"}, transport.SSLNever, nil)
	}()

	conn := backend.Accept()
	defer conn.Close()
	handshakeOK(t, conn)

	require.NoError(t, <-done)
	require.True(t, sess.IsOpen())
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, int32(4242), sess.BackendKeyData.ProcessID)
	require.Equal(t, "16.1", sess.ParameterStatuses["server_version"])
}

func TestHandshakeBackendRejects(t *testing.T) {
	backend := mock.NewBackend(t)
	tr := backend.Dial(context.Background())

	sess := New(tr, Options{Logger: slogt.New(t)})

	done := make(chan error, 1)
	go func() {
		done <- sess.Handshake(context.Background(), nil, auth.Credentials{Username: "alice", Password: "wrong"}, transport.SSLNever, nil)
	}()

	conn := backend.Accept()
	defer conn.Close()

	conn.ReadStartupBody()
	conn.SendAuthCleartext()
	conn.ReadFrontend()
	conn.SendErrorResponse(map[byte]string{'S': "FATAL", 'C': "28P01", 'M': "authentication failed"})

	err := <-done
	require.Error(t, err)
	require.False(t, sess.IsOpen())
}

func TestSimpleQueryRoundTrip(t *testing.T) {
	backend := mock.NewBackend(t)
	tr := backend.Dial(context.Background())

	sess := New(tr, Options{Logger: slogt.New(t)})

	done := make(chan error, 1)
	go func() {
		done <- sess.Handshake(context.Background(), map[string]string{"user": "alice"}, auth.Credentials{Username: "alice"}, transport.SSLNever, nil)
	}()

	conn := backend.Accept()
	defer conn.Close()
	handshakeOK(t, conn)
	require.NoError(t, <-done)

	require.NoError(t, sess.StageQuery("SELECT 1"))
	require.Equal(t, 1, sess.ExpectedReadyForQuery())
	require.NoError(t, sess.Flush())
	require.Equal(t, 1, sess.ExpectedReadyForQuery())

	mt, _ := conn.ReadFrontend()
	require.Equal(t, byte('Q'), byte(mt))

	conn.SendRowDescription([]string{"one"}, []oid.Oid{oid.Int4}, format.Text)
	conn.SendDataRow([][]byte{[]byte("1")})
	conn.SendCommandComplete("SELECT 1")
	conn.SendReadyForQuery(types.TransactionIdle)

	var rows [][][]byte
	result, err := sess.PollMessages(true, func(t types.BackendMessage, r *buffer.Reader) (bool, error) {
		if t == types.BackendDataRow {
			dr, err := pgproto.ParseDataRow(r)
			if err != nil {
				return false, err
			}
			copied := make([][]byte, len(dr.Values))
			for i, v := range dr.Values {
				copied[i] = append([]byte(nil), v...)
			}
			rows = append(rows, copied)
		}
		return false, nil
	})
	require.NoError(t, err)
	require.Nil(t, result.BackendErr)
	require.Equal(t, 0, sess.ExpectedReadyForQuery())
	require.Len(t, rows, 1)
	require.Equal(t, "1", string(rows[0][0]))
}

func TestUnsolicitedReadyForQueryIsProtocolViolation(t *testing.T) {
	backend := mock.NewBackend(t)
	tr := backend.Dial(context.Background())

	sess := New(tr, Options{Logger: slogt.New(t)})

	done := make(chan error, 1)
	go func() {
		done <- sess.Handshake(context.Background(), map[string]string{"user": "alice"}, auth.Credentials{Username: "alice"}, transport.SSLNever, nil)
	}()

	conn := backend.Accept()
	defer conn.Close()
	handshakeOK(t, conn)
	require.NoError(t, <-done)

	// No Query/Sync/PasswordMessage was staged, so expected_rfq is zero;
	// a ReadyForQuery arriving now is unsolicited.
	require.Equal(t, 0, sess.ExpectedReadyForQuery())
	conn.SendReadyForQuery(types.TransactionIdle)

	_, err := sess.PollMessages(true, nil)
	require.Error(t, err)
	require.Equal(t, pgerr.ProtocolErr, pgerr.GetCategory(err))
	require.False(t, sess.IsOpen())
}

func newOpenSession(t *testing.T) (*Session, *mock.Conn, *mock.Backend) {
	t.Helper()

	backend := mock.NewBackend(t)
	tr := backend.Dial(context.Background())
	sess := New(tr, Options{Logger: slogt.New(t)})

	done := make(chan error, 1)
	go func() {
		done <- sess.Handshake(context.Background(), map[string]string{"user": "alice"}, auth.Credentials{Username: "alice"}, transport.SSLNever, nil)
	}()

	conn := backend.Accept()
	handshakeOK(t, conn)
	require.NoError(t, <-done)
	return sess, conn, backend
}

func TestSaveRestoreRewindsStagedFrames(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	require.NoError(t, sess.StageQuery("SELECT 1"))

	sp := sess.Save()
	require.NoError(t, sess.StageQuery("SELECT 2"))
	require.NoError(t, sess.StageSync())
	require.Equal(t, 3, sess.ExpectedReadyForQuery())

	sess.Restore(sp)
	require.Equal(t, 1, sess.ExpectedReadyForQuery())

	require.NoError(t, sess.Flush())

	// Only the frame staged before the save point reaches the wire.
	mt, r := conn.ReadFrontend()
	require.Equal(t, byte('Q'), byte(mt))
	sql, err := r.GetString()
	require.NoError(t, err)
	require.Equal(t, "SELECT 1", sql)

	conn.SendEmptyQueryResponse()
	conn.SendReadyForQuery(types.TransactionIdle)
	_, err = sess.PollMessages(true, nil)
	require.NoError(t, err)
	require.Equal(t, 0, sess.ExpectedReadyForQuery())
}

func TestEmptySaveRestoreIsIdentity(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	require.NoError(t, sess.StageQuery("SELECT 1"))
	before := sess.ExpectedReadyForQuery()

	sess.Restore(sess.Save())
	require.Equal(t, before, sess.ExpectedReadyForQuery())
}

func TestDiscardResetsStagedState(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	require.NoError(t, sess.StageQuery("SELECT 1"))
	require.NoError(t, sess.StageSync())
	require.Equal(t, 2, sess.ExpectedReadyForQuery())

	sess.Discard()
	require.Equal(t, 0, sess.ExpectedReadyForQuery())

	// Nothing was retained: a flush after discard writes no frames.
	require.NoError(t, sess.Flush())
}

func TestTerminateIsIdempotent(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	require.NoError(t, sess.Terminate())
	require.False(t, sess.IsOpen())

	mt, _ := conn.ReadFrontend()
	require.Equal(t, byte('X'), byte(mt))

	require.NoError(t, sess.Terminate())
	require.NoError(t, sess.Close())
}

func TestCopyDataOutsideCopyInIsClientError(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	err := sess.CopyData([]byte("1\n"))
	require.Error(t, err)
	require.Equal(t, pgerr.ClientErr, pgerr.GetCategory(err))

	err = sess.CopyDone()
	require.Error(t, err)
	require.Equal(t, pgerr.ClientErr, pgerr.GetCategory(err))
}

func TestFinishOnErrorSurfacesBackendErrorAndDrains(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	require.NoError(t, sess.StageQuery("SELECT nonexisting()"))
	require.NoError(t, sess.Flush())

	conn.ReadFrontend()
	conn.SendErrorResponse(map[byte]string{'S': "ERROR", 'C': "42883", 'M': "function nonexisting() does not exist"})
	conn.SendReadyForQuery(types.TransactionIdle)

	result, err := sess.PollMessages(true, nil)
	require.NoError(t, err)
	require.Error(t, result.BackendErr)

	var backendErr *pgerr.BackendError
	require.ErrorAs(t, result.BackendErr, &backendErr)
	require.Equal(t, "42883", backendErr.Notice.Code)
	require.Equal(t, "ERROR", backendErr.Notice.Severity)

	// The ReadyForQuery for the failed statement is still owed; a minimal
	// follow-up pump drains it and the session stays usable.
	require.Equal(t, 1, sess.ExpectedReadyForQuery())
	_, err = sess.PollMessages(false, nil)
	require.NoError(t, err)
	require.Equal(t, 0, sess.ExpectedReadyForQuery())
	require.True(t, sess.IsOpen())
}

func TestNotificationCallbackBreaksPump(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	var got pgproto.NotificationResponse
	sess.NotificationCallback = func(n pgproto.NotificationResponse) bool {
		got = n
		return true
	}

	conn.SendNotificationResponse(777, "pings", "hello")

	_, err := sess.PollMessages(true, nil)
	require.NoError(t, err)
	require.Equal(t, int32(777), got.ProcessID)
	require.Equal(t, "pings", got.Channel)
	require.Equal(t, "hello", got.Payload)
}

func TestNoticeCallbackReceivesFields(t *testing.T) {
	sess, conn, _ := newOpenSession(t)
	defer conn.Close()

	var notices []pgerr.Fields
	sess.NoticeCallback = func(f pgerr.Fields) {
		notices = append(notices, f)
	}

	sess.NotificationCallback = func(pgproto.NotificationResponse) bool { return true }

	conn.SendNoticeResponse(map[byte]string{'S': "NOTICE", 'C': "00000", 'M': "something advisory"})
	conn.SendNotificationResponse(1, "done", "")

	_, err := sess.PollMessages(true, nil)
	require.NoError(t, err)
	require.Len(t, notices, 1)
}

func TestCancelSendsCancelRequestOnDuplicateTransport(t *testing.T) {
	sess, conn, backend := newOpenSession(t)
	defer conn.Close()

	done := make(chan error, 1)
	go func() {
		done <- sess.Cancel(context.Background())
	}()

	dup := backend.Accept()
	defer dup.Close()

	length, code, pid, key := dup.ReadCancelRequest()
	require.Equal(t, 16, length)
	require.Equal(t, uint32(80877102), code)
	require.Equal(t, int32(4242), pid)
	require.Equal(t, int32(99887766), key)

	require.NoError(t, <-done)
	// The primary transport saw no traffic and stays open.
	require.True(t, sess.IsOpen())
}
