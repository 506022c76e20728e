package session

import (
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

// SavePoint snapshots the write-buffer head and buffered ReadyForQuery
// counter so a partially assembled batch of staged frames can be rewound
// without transmitting junk.
type SavePoint struct {
	head        int
	bufferedRFQ int
}

// Save captures the current position of the staged send buffer.
func (s *Session) Save() SavePoint {
	return SavePoint{head: s.sendBuf.Len(), bufferedRFQ: s.bufferedRFQ}
}

// Restore rewinds the staged send buffer and buffered_rfq counter to a
// prior SavePoint, discarding everything staged since.
func (s *Session) Restore(sp SavePoint) {
	s.sendBuf.Truncate(sp.head)
	s.bufferedRFQ = sp.bufferedRFQ
}

// Discard resets the staged send buffer and buffered ReadyForQuery counter
// to zero.
func (s *Session) Discard() {
	s.sendBuf.Reset()
	s.bufferedRFQ = 0
}

// Flush writes the staged buffer to the transport and moves the buffered
// ReadyForQuery count into the expected count. Either both happen or, on a
// transport failure, neither: the session is marked closed before any
// counter moves.
func (s *Session) Flush() error {
	if s.sendBuf.Len() == 0 {
		s.bufferedRFQ = 0
		return nil
	}

	if err := s.transport.SendAll(s.sendBuf.Bytes()); err != nil {
		s.open = false
		return err
	}

	s.expectedRFQ += s.bufferedRFQ
	s.bufferedRFQ = 0
	s.sendBuf.Reset()
	return nil
}

// ExpectedReadyForQuery reports the total number of ReadyForQuery messages
// still owed by the backend, counting both flushed and staged frames.
func (s *Session) ExpectedReadyForQuery() int {
	return s.expectedRFQ + s.bufferedRFQ
}

// StageQuery stages a simple-query Query message. Query elicits a
// ReadyForQuery and therefore increments buffered_rfq.
func (s *Session) StageQuery(sql string) error {
	if err := pgproto.WriteQuery(s.writer, sql); err != nil {
		return err
	}

	s.bufferedRFQ++
	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageSync stages an empty-bodied Sync message. Sync elicits a
// ReadyForQuery and therefore increments buffered_rfq.
func (s *Session) StageSync() error {
	if err := pgproto.WriteSync(s.writer); err != nil {
		return err
	}

	s.bufferedRFQ++
	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageParse stages a Parse message. Does not affect buffered_rfq.
func (s *Session) StageParse(statement, query string, paramOIDs []oid.Oid) error {
	if err := pgproto.WriteParse(s.writer, statement, query, paramOIDs); err != nil {
		return err
	}

	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageBind stages a Bind message. Does not affect buffered_rfq.
func (s *Session) StageBind(portal, statement string, paramFormats []format.Code, params [][]byte, resultFormats []format.Code) error {
	if err := pgproto.WriteBind(s.writer, portal, statement, paramFormats, params, resultFormats); err != nil {
		return err
	}

	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageDescribe stages a Describe message for a statement or portal. Does
// not affect buffered_rfq.
func (s *Session) StageDescribe(kind buffer.PrepareType, name string) error {
	if err := pgproto.WriteDescribe(s.writer, kind, name); err != nil {
		return err
	}

	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageExecute stages an Execute message. maxRows == 0 means "no limit".
// Does not affect buffered_rfq.
func (s *Session) StageExecute(portal string, maxRows int32) error {
	if err := pgproto.WriteExecute(s.writer, portal, maxRows); err != nil {
		return err
	}

	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageClose stages a Close message for a statement or portal. Does not
// affect buffered_rfq.
func (s *Session) StageClose(kind buffer.PrepareType, name string) error {
	if err := pgproto.WriteClose(s.writer, kind, name); err != nil {
		return err
	}

	s.hooks.FrameSent(s.writer.LastType())
	return nil
}

// StageFlush stages an empty-bodied Flush message (the protocol message
// that forces the backend to deliver pending output; unrelated to
// Session.Flush, which pushes the staged buffer onto the wire). Does not
// affect buffered_rfq.
func (s *Session) StageFlush() error {
	if err := pgproto.WriteFlush(s.writer); err != nil {
		return err
	}

	s.hooks.FrameSent(s.writer.LastType())
	return nil
}
