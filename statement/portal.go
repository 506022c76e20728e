package statement

import (
	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
)

// Portal holds a prepared statement, portal name, and persist flag. Use ""
// as Name for the anonymous portal.
type Portal struct {
	Statement *PreparedStatement
	Name      string
	Persist   bool

	bindComplete bool
}

// NewPortal constructs a Portal bound to stmt. Bind must still be called to
// stage the Bind frame.
func NewPortal(stmt *PreparedStatement, name string, persist bool) *Portal {
	return &Portal{Statement: stmt, Name: name, Persist: persist}
}

// Bind stages a Bind message binding already-serialized parameter values
// (each paired implicitly with a format code) to this portal.
func (p *Portal) Bind(paramFormats []format.Code, params [][]byte, resultFormats []format.Code) error {
	p.bindComplete = false
	return p.Statement.Session.StageBind(p.Name, p.Statement.Name, paramFormats, params, resultFormats)
}

// Param pairs a native value with the OID and wire format it should be
// serialized as, for use with BindValues. A nil Value stages a SQL NULL.
type Param struct {
	OID    oid.Oid
	Format format.Code
	Value  interface{}
}

// BindValues is the statically-typed counterpart to Bind: it serializes
// each Param through the session's Registry before staging the resulting
// Bind message, rather than requiring the caller to pre-assemble the wire
// bytes itself.
func (p *Portal) BindValues(params []Param, resultFormats []format.Code) error {
	paramFormats := make([]format.Code, len(params))
	values := make([][]byte, len(params))

	for i, param := range params {
		wire, err := p.Statement.Session.Registry.Serialize(param.OID, param.Format, param.Value)
		if err != nil {
			return err
		}

		paramFormats[i] = param.Format
		values[i] = wire
	}

	return p.Bind(paramFormats, values, resultFormats)
}

// Execute stages Execute for this portal, preceded by Describe('P') when
// describe is true. maxRows == 0 means "no limit".
func (p *Portal) Execute(describe bool, maxRows int32) error {
	if describe {
		if err := p.Statement.Session.StageDescribe(buffer.PreparePortal, p.Name); err != nil {
			return err
		}
	}

	return p.Statement.Session.StageExecute(p.Name, maxRows)
}

// Close stages a Close('P') message for this portal.
func (p *Portal) Close() error {
	return p.Statement.Session.StageClose(buffer.PreparePortal, p.Name)
}

// EnsureBindComplete pumps until a BindComplete message is seen for this
// portal, surfacing any BackendError encountered along the way.
func (p *Portal) EnsureBindComplete() error {
	if p.bindComplete {
		return nil
	}

	result, err := p.Statement.Session.PollMessages(true, func(t types.BackendMessage, r *buffer.Reader) (bool, error) {
		if t != types.BackendBindComplete {
			return false, nil
		}

		p.bindComplete = true
		return true, nil
	})
	if err != nil {
		return err
	}
	if result.BackendErr != nil {
		return result.BackendErr
	}
	if !p.bindComplete {
		return pgerr.NewProtocolError("pump ended without BindComplete")
	}

	return nil
}
