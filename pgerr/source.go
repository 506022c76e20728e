package pgerr

import (
	"errors"
	"fmt"
)

// WithSource decorates the error with the originating Postgres source
// location, as carried by the File/Line/Routine ErrorResponse fields.
func WithSource(err error, file string, line int32, function string) error {
	if err == nil {
		return nil
	}

	return &withSource{cause: err, file: file, line: line, function: function}
}

// GetSource returns the Postgres source inside the given error, or nil if none.
func GetSource(err error) *Source {
	if be, ok := AsBackendError(err); ok {
		if be.Notice.File == "" && be.Notice.Line == "" && be.Notice.Routine == "" {
			return nil
		}

		var line int32
		fmt.Sscanf(be.Notice.Line, "%d", &line)
		return &Source{File: be.Notice.File, Line: line, Function: be.Notice.Routine}
	}

	if s, ok := err.(*withSource); ok {
		return &Source{File: s.file, Line: s.line, Function: s.function}
	}

	if n := errors.Unwrap(err); n != nil {
		return GetSource(n)
	}

	return nil
}

type withSource struct {
	cause    error
	file     string
	line     int32
	function string
}

func (w *withSource) Error() string { return w.cause.Error() }
func (w *withSource) Unwrap() error { return w.cause }
