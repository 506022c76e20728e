// Package pgtype implements the field (de)serialization contract used by
// Bind parameter writers and DataRow readers, plus the OID-keyed dispatch
// table mapping a type OID to its codec.
package pgtype

import (
	"errors"

	"github.com/pgwireclient/pgwire/pkg/format"
)

// Serializer encodes a native value into its wire representation for the
// given format. Called in two passes:
//
//   - size-only pass: dst is nil. Returns the exact byte length required,
//     or -1 if value denotes a SQL NULL. The caller allocates exactly that
//     many bytes and calls again.
//   - write pass: dst is a slice of the exact required length. Returns the
//     number of bytes written (== len(dst)) or an error.
type Serializer func(f format.Code, value interface{}, dst []byte) (n int, err error)

// Deserializer decodes a wire field body into a native value. isNull is
// true when the field carried a -1 length prefix; src is empty in that
// case. Implementations must raise on length mismatches, unsupported
// format codes, or unparsable text.
type Deserializer func(f format.Code, isNull bool, src []byte) (value interface{}, err error)

// Codec bundles the (de)serializer pair the registry dispatches to for a
// given OID, along with the type's canonical wire format. The registry stores
// CanonicalFormat but does not consult it: Serialize and Deserialize use the
// format the caller passes.
type Codec struct {
	Name            string
	CanonicalFormat format.Code
	Serialize       Serializer
	Deserialize     Deserializer
}

// errNullNotAllowed is returned by Require-wrapped deserializers when a
// non-nullable field arrives as a SQL NULL.
var errNullNotAllowed = errors.New("null value for a non-nullable field")

// Require wraps d so that a null field raises instead of yielding a nil
// value, for FieldSpecs that declared the column non-nullable.
func Require(d Deserializer) Deserializer {
	return func(f format.Code, isNull bool, src []byte) (interface{}, error) {
		if isNull {
			return nil, errNullNotAllowed
		}

		return d(f, isNull, src)
	}
}
