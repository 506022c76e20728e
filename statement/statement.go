// Package statement implements the prepared-statement and portal helper
// wrappers: pure sugar over the frame builders and pump exposed by package
// session.
package statement

import (
	"strconv"
	"sync/atomic"

	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
	"github.com/pgwireclient/pgwire/session"
)

// NameAllocator hands out monotonically increasing, never-reused statement
// or portal names for a session. The empty string (anonymous
// statement/portal) is never produced by Next; callers who want the
// anonymous name use "" directly.
type NameAllocator struct {
	prefix  string
	counter uint64
}

// NewNameAllocator builds an allocator that stringifies a monotonic counter
// with the given prefix (e.g. "stmt" → "stmt1", "stmt2", ...).
func NewNameAllocator(prefix string) *NameAllocator {
	return &NameAllocator{prefix: prefix}
}

// Next returns the next name in sequence.
func (a *NameAllocator) Next() string {
	n := atomic.AddUint64(&a.counter, 1)
	return a.prefix + strconv.FormatUint(n, 10)
}

// PreparedStatement holds a session, statement name, query text, declared
// parameter OIDs, and a persist flag. Use "" as Name for the anonymous
// statement.
type PreparedStatement struct {
	Session   *session.Session
	Name      string
	Query     string
	ParamOIDs []oid.Oid
	Persist   bool

	parseComplete bool
}

// NewPreparedStatement constructs a PreparedStatement bound to s. Parse must
// still be called to stage the Parse frame.
func NewPreparedStatement(s *session.Session, name, query string, paramOIDs []oid.Oid, persist bool) *PreparedStatement {
	return &PreparedStatement{Session: s, Name: name, Query: query, ParamOIDs: paramOIDs, Persist: persist}
}

// Parse stages a Parse message for this statement.
func (p *PreparedStatement) Parse() error {
	p.parseComplete = false
	return p.Session.StageParse(p.Name, p.Query, p.ParamOIDs)
}

// Close stages a Close('S') message for this statement. Anonymous
// statements are implicitly replaced by the next Parse and rarely need
// Close, but calling it is harmless.
func (p *PreparedStatement) Close() error {
	return p.Session.StageClose(buffer.PrepareStatement, p.Name)
}

// EnsureParseComplete pumps until a ParseComplete message is seen for this
// statement, surfacing any BackendError encountered along the way.
func (p *PreparedStatement) EnsureParseComplete() error {
	if p.parseComplete {
		return nil
	}

	result, err := p.Session.PollMessages(true, func(t types.BackendMessage, r *buffer.Reader) (bool, error) {
		if t != types.BackendParseComplete {
			return false, nil
		}

		p.parseComplete = true
		return true, nil
	})
	if err != nil {
		return err
	}
	if result.BackendErr != nil {
		return result.BackendErr
	}
	if !p.parseComplete {
		return pgerr.NewProtocolError("pump ended without ParseComplete")
	}

	return nil
}
