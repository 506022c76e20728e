// Package pgerr implements the client-side error taxonomy described by the
// wire protocol: every failure surfaced to a caller is a plain Go error
// decorated, via the withX wrapper chain below, with the SQLSTATE code,
// severity, hint, detail, constraint name and source location a BackendError
// carries on the wire. Callers walk the chain with errors.As/errors.Is and
// the GetX accessors instead of type-switching on a family of bespoke error
// structs.
package pgerr

import "github.com/pgwireclient/pgwire/codes"

// Source represents, whenever possible, the origin of a given error as
// reported by the backend (the File/Line/Routine ErrorResponse fields).
type Source struct {
	File     string
	Line     int32
	Function string
}

// Fields is a flattened, read-only view of an error suitable for turning
// into a human-readable message or a log record.
type Fields struct {
	Category       Category
	Code           codes.Code
	Message        string
	Detail         string
	Hint           string
	Severity       Severity
	ConstraintName string
	Source         *Source
}

// Flatten collapses the decorator chain on err into a single Fields value.
func Flatten(err error) Fields {
	if err == nil {
		return Fields{
			Category: ClientErr,
			Code:     codes.Internal,
			Message:  "unknown error",
			Severity: LevelFatal,
		}
	}

	return Fields{
		Category:       GetCategory(err),
		Code:           GetCode(err),
		Message:        err.Error(),
		Detail:         GetDetail(err),
		Hint:           GetHint(err),
		Severity:       DefaultSeverity(GetSeverity(err)),
		ConstraintName: GetConstraintName(err),
		Source:         GetSource(err),
	}
}
