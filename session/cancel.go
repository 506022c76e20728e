package session

import (
	"context"

	"github.com/pgwireclient/pgwire/pgproto"
)

// Cancel opens a duplicate transport to the same endpoint, sends a
// CancelRequest built from the session's cached BackendKeyData, and closes
// it. It never writes to the primary session's transport.
func (s *Session) Cancel(ctx context.Context) error {
	dup, err := s.transport.Duplicate(ctx)
	if err != nil {
		return err
	}
	defer dup.Close()

	return dup.SendAll(pgproto.BuildCancelRequest(s.BackendKeyData.ProcessID, s.BackendKeyData.SecretKey))
}
