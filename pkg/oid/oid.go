// Package oid declares the well-known PostgreSQL type Object Identifiers used
// by the Bind/DataRow (de)serialization layer. The Oid type is an alias of
// lib/pq's oid type; the well-known numbers are declared in this package.
package oid

import "github.com/lib/pq/oid"

// Oid names a PostgreSQL type, as carried on the wire in RowDescription,
// ParameterDescription, and Bind.
type Oid = oid.Oid

// Well-known type OIDs, plus the common extras PostgreSQL itself defines
// for these same catalog rows.
const (
	Null        Oid = 0
	Bool        Oid = 16
	Bytea       Oid = 17
	Char        Oid = 18
	Name        Oid = 19
	Int8        Oid = 20
	Int2        Oid = 21
	Int4        Oid = 23
	Text        Oid = 25
	OidType     Oid = 26
	Json        Oid = 114
	Float4      Oid = 700
	Float8      Oid = 701
	Varchar     Oid = 1043
	Date        Oid = 1082
	Time        Oid = 1083
	Timestamp   Oid = 1114
	TimestampTz Oid = 1184
	Numeric     Oid = 1700
	UUID        Oid = 2950
	Jsonb       Oid = 3802
)

// TypeName returns the canonical SQL name for a well-known OID and reports
// whether one is known. Unknown OIDs report ok=false; callers fall back to
// treating the value as opaque text.
func TypeName(o Oid) (name string, ok bool) {
	switch o {
	case Null:
		return "null", true
	case Bool:
		return "bool", true
	case Bytea:
		return "bytea", true
	case Char:
		return "char", true
	case Name:
		return "name", true
	case Int8:
		return "int8", true
	case Int2:
		return "int2", true
	case Int4:
		return "int4", true
	case Text:
		return "text", true
	case OidType:
		return "oid", true
	case Json:
		return "json", true
	case Float4:
		return "float4", true
	case Float8:
		return "float8", true
	case Varchar:
		return "varchar", true
	case Date:
		return "date", true
	case Time:
		return "time", true
	case Timestamp:
		return "timestamp", true
	case TimestampTz:
		return "timestamptz", true
	case Numeric:
		return "numeric", true
	case UUID:
		return "uuid", true
	case Jsonb:
		return "jsonb", true
	default:
		return "", false
	}
}
