package statement

import (
	"fmt"

	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pgtype"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
	"github.com/pgwireclient/pgwire/pkg/types"
	"github.com/pgwireclient/pgwire/session"
)

// BlockState is the terminal state of a RowBlock.
type BlockState int

const (
	BlockIncomplete BlockState = iota
	BlockComplete
	BlockEmptyQuery
	BlockSuspended
	BlockInvalid
)

func (s BlockState) String() string {
	switch s {
	case BlockComplete:
		return "complete"
	case BlockEmptyQuery:
		return "empty-query"
	case BlockSuspended:
		return "suspended"
	case BlockInvalid:
		return "invalid"
	default:
		return "incomplete"
	}
}

// RowBlock groups the DataRows that follow a single RowDescription (or, when
// RowDescription was skipped, an anonymous implicit block) up to its
// terminal message.
type RowBlock struct {
	Description *pgproto.RowDescription
	Rows        []pgproto.DataRow
	State       BlockState
	CommandTag  string
}

// QueryResult is an ordered list of RowBlocks, mirroring statement order
// (simple query) or Execute order (extended query).
type QueryResult struct {
	Blocks []*RowBlock
}

// GetQueryResults pumps s until ReadyForQuery, accumulating RowBlocks in
// order: RowDescription starts a new block;
// DataRow extends the current block or, when none is open and
// requireRowDesc is false, opens an anonymous block; EmptyQueryResponse,
// CommandComplete and PortalSuspended close the current block with the
// matching terminal state; any ErrorResponse short-circuits and surfaces.
func GetQueryResults(s *session.Session, requireRowDesc bool) (QueryResult, error) {
	var result QueryResult
	var current *RowBlock

	openAnonymous := func() *RowBlock {
		b := &RowBlock{State: BlockIncomplete}
		result.Blocks = append(result.Blocks, b)
		return b
	}

	pumpResult, err := s.PollMessages(true, func(t types.BackendMessage, r *buffer.Reader) (bool, error) {
		switch t {
		case types.BackendRowDescription:
			rd, err := pgproto.ParseRowDescription(r)
			if err != nil {
				return false, err
			}

			current = &RowBlock{Description: &rd, State: BlockIncomplete}
			result.Blocks = append(result.Blocks, current)

		case types.BackendDataRow:
			dr, err := pgproto.ParseDataRow(r)
			if err != nil {
				return false, err
			}

			if current == nil {
				if requireRowDesc {
					return false, pgerr.NewProtocolError("DataRow received without a preceding RowDescription")
				}

				current = openAnonymous()
			}

			current.Rows = append(current.Rows, dr)

		case types.BackendEmptyQuery:
			if current == nil {
				current = openAnonymous()
			}

			current.State = BlockEmptyQuery
			current = nil

		case types.BackendCommandComplete:
			cc, err := pgproto.ParseCommandComplete(r)
			if err != nil {
				return false, err
			}

			if current == nil {
				current = openAnonymous()
			}

			current.State = BlockComplete
			current.CommandTag = cc.Tag
			current = nil

		case types.BackendPortalSuspended:
			if current == nil {
				current = openAnonymous()
			}

			current.State = BlockSuspended
			current = nil
		}

		return false, nil
	})
	if err != nil {
		return result, err
	}
	if pumpResult.BackendErr != nil {
		return result, pumpResult.BackendErr
	}

	return result, nil
}

// BlockToRows lazily yields each DataRow's raw column values. Values are
// slices of the session's receive buffer; later reads do not overwrite them.
func BlockToRows(block *RowBlock) func(yield func([][]byte) bool) {
	return func(yield func([][]byte) bool) {
		for _, row := range block.Rows {
			if !yield(row.Values) {
				return
			}
		}
	}
}

// FieldSpec pairs an OID with a nullability declaration, consulted by
// BlockToTuples to decide whether a wire null is acceptable.
type FieldSpec struct {
	OID      oid.Oid
	Nullable bool
}

// BlockToTuples lazily decodes each DataRow of block into native Go values
// using specs, one per column in order. A length mismatch between specs and
// a row's column count is a ClientError.
func BlockToTuples(registry *pgtype.Registry, block *RowBlock, specs []FieldSpec, formatOf func(column int) format.Code) func(yield func([]interface{}, error) bool) {
	return func(yield func([]interface{}, error) bool) {
		for _, row := range block.Rows {
			if len(row.Values) != len(specs) {
				if !yield(nil, pgerr.NewClientError("row column count does not match FieldSpec count")) {
					return
				}
				continue
			}

			tuple := make([]interface{}, len(specs))
			var rowErr error

			for i, spec := range specs {
				f := formatOf(i)
				isNull := row.Values[i] == nil
				if isNull && !spec.Nullable {
					rowErr = pgerr.NewDeserializationError(fmt.Errorf("column %d: null value for a non-nullable field", i))
					break
				}

				value, err := registry.Deserialize(spec.OID, f, isNull, row.Values[i])
				if err != nil {
					rowErr = err
					break
				}

				tuple[i] = value
			}

			if !yield(tuple, rowErr) {
				return
			}
		}
	}
}
