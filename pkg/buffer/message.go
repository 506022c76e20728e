package buffer

import "math"

//go:generate stringer -type=ErrFieldType

// ErrFieldType represents a single-byte field identifier carried by
// ErrorResponse and NoticeResponse messages.
type ErrFieldType byte

// http://www.postgresql.org/docs/current/static/protocol-error-fields.html
const (
	ErrFieldSeverity         ErrFieldType = 'S'
	ErrFieldSeverityNonLocal ErrFieldType = 'V'
	ErrFieldSQLState         ErrFieldType = 'C'
	ErrFieldMsgPrimary       ErrFieldType = 'M'
	ErrFieldDetail           ErrFieldType = 'D'
	ErrFieldHint             ErrFieldType = 'H'
	ErrFieldPosition         ErrFieldType = 'P'
	ErrFieldInternalPosition ErrFieldType = 'p'
	ErrFieldInternalQuery    ErrFieldType = 'q'
	ErrFieldWhere            ErrFieldType = 'W'
	ErrFieldSchemaName       ErrFieldType = 's'
	ErrFieldTableName        ErrFieldType = 't'
	ErrFieldColumnName       ErrFieldType = 'c'
	ErrFieldDatatypeName     ErrFieldType = 'd'
	ErrFieldConstraintName   ErrFieldType = 'n'
	ErrFieldSrcFile          ErrFieldType = 'F'
	ErrFieldSrcLine          ErrFieldType = 'L'
	ErrFieldSrcFunction      ErrFieldType = 'R'
)

//go:generate stringer -type=PrepareType

// PrepareType represents a subtype for Describe/Close messages.
type PrepareType byte

const (
	// PrepareStatement represents a prepared statement.
	PrepareStatement PrepareType = 'S'
	// PreparePortal represents a portal.
	PreparePortal PrepareType = 'P'
)

// MaxPreparedStatementArgs is the maximum number of arguments a prepared
// statement can have when prepared via the Postgres wire protocol. This is
// not documented by Postgres, but is a consequence of the fact that a
// 16-bit integer in the wire format is used to indicate the number of
// values to bind during prepared statement execution.
const MaxPreparedStatementArgs = math.MaxUint16
