package session

import (
	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pkg/buffer"
)

// CopyResponse is returned by whichever interceptor callback observes the
// CopyInResponse/CopyOutResponse/CopyBothResponse that starts a COPY.
type CopyResponse = pgproto.CopyResponse

// BeginCopyIn records that the channel has entered CopyIn mode, following a
// CopyInResponse observed by the caller's interceptor. CopyData sent before
// this call is a programming error.
func (s *Session) BeginCopyIn(resp CopyResponse) {
	s.copyMode = copyIn
}

// BeginCopyOut records that the channel has entered CopyOut mode, following
// a CopyOutResponse observed by the caller's interceptor.
func (s *Session) BeginCopyOut(resp CopyResponse) {
	s.copyMode = copyOut
}

// BeginCopyBoth records that the channel has entered CopyBoth mode.
func (s *Session) BeginCopyBoth(resp CopyResponse) {
	s.copyMode = copyBoth
}

// EndCopy clears COPY mode, e.g. once CopyDone/CommandComplete has been
// observed.
func (s *Session) EndCopy() {
	s.copyMode = copyNone
}

// CopyData sends a chunk of COPY data during CopyIn. Sending CopyData while
// not in CopyIn mode is caller misuse and is rejected with a ClientError.
func (s *Session) CopyData(chunk []byte) error {
	if s.copyMode != copyIn {
		return pgerr.NewClientError("CopyData sent outside of CopyIn mode")
	}

	return s.sendDirect(func(w *buffer.Writer) error {
		return pgproto.WriteCopyData(w, chunk)
	})
}

// CopyDone ends a CopyIn (or the frontend-originated half of a CopyBoth)
// stream.
func (s *Session) CopyDone() error {
	if s.copyMode != copyIn && s.copyMode != copyBoth {
		return pgerr.NewClientError("CopyDone sent outside of CopyIn/CopyBoth mode")
	}

	if err := s.sendDirect(pgproto.WriteCopyDone); err != nil {
		return err
	}

	if s.copyMode == copyIn {
		s.copyMode = copyNone
	}
	return nil
}

// CopyFail aborts a CopyIn stream, reporting reason to the backend.
func (s *Session) CopyFail(reason string) error {
	if s.copyMode != copyIn {
		return pgerr.NewClientError("CopyFail sent outside of CopyIn mode")
	}

	err := s.sendDirect(func(w *buffer.Writer) error {
		return pgproto.WriteCopyFail(w, reason)
	})
	s.copyMode = copyNone
	return err
}
