package pgtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

// registerBuiltins installs the built-in converters: BOOL, SMALLINT, INT,
// BIGINT, REAL, DOUBLE, OID, VARCHAR/TEXT/CHARACTER, BYTEA, plus UUID (in
// uuid.go) and NUMERIC (in numeric.go).
func registerBuiltins(r *Registry) {
	r.Register(oid.Bool, Codec{Name: "bool", CanonicalFormat: format.Binary, Serialize: serializeBool, Deserialize: deserializeBool})
	r.Register(oid.Int2, Codec{Name: "int2", CanonicalFormat: format.Binary, Serialize: serializeInt2, Deserialize: deserializeInt2})
	r.Register(oid.Int4, Codec{Name: "int4", CanonicalFormat: format.Binary, Serialize: serializeInt4, Deserialize: deserializeInt4})
	r.Register(oid.Int8, Codec{Name: "int8", CanonicalFormat: format.Binary, Serialize: serializeInt8, Deserialize: deserializeInt8})
	r.Register(oid.Float4, Codec{Name: "float4", CanonicalFormat: format.Binary, Serialize: serializeFloat4, Deserialize: deserializeFloat4})
	r.Register(oid.Float8, Codec{Name: "float8", CanonicalFormat: format.Binary, Serialize: serializeFloat8, Deserialize: deserializeFloat8})
	r.Register(oid.OidType, Codec{Name: "oid", CanonicalFormat: format.Binary, Serialize: serializeInt4, Deserialize: deserializeInt4})

	r.Register(oid.Text, Codec{Name: "text", CanonicalFormat: format.Text, Serialize: serializeText, Deserialize: deserializeText})
	r.Register(oid.Varchar, Codec{Name: "varchar", CanonicalFormat: format.Text, Serialize: serializeText, Deserialize: deserializeText})
	r.Register(oid.Char, Codec{Name: "char", CanonicalFormat: format.Text, Serialize: serializeText, Deserialize: deserializeText})
	r.Register(oid.Name, Codec{Name: "name", CanonicalFormat: format.Text, Serialize: serializeText, Deserialize: deserializeText})

	r.Register(oid.Bytea, Codec{Name: "bytea", CanonicalFormat: format.Binary, Serialize: serializeBytea, Deserialize: deserializeBytea})

	registerUUID(r)
	registerNumeric(r)
}

// textFallbackCodec is used when an OID is unknown and the wire format is
// TEXT: the field body is surfaced as opaque text.
var textFallbackCodec = Codec{Name: "text-fallback", CanonicalFormat: format.Text, Serialize: serializeText, Deserialize: deserializeText}

// --- bool ---

func serializeBool(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, ok := value.(bool)
	if !ok {
		return 0, fmt.Errorf("expected bool, got %T", value)
	}

	if dst == nil {
		return 1, nil
	}

	if f == format.Text {
		if v {
			dst[0] = 't'
		} else {
			dst[0] = 'f'
		}
		return 1, nil
	}

	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	return 1, nil
}

func deserializeBool(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		if len(src) != 1 {
			return nil, fmt.Errorf("invalid bool text representation: %q", src)
		}
		switch src[0] {
		case 't':
			return true, nil
		case 'f':
			return false, nil
		default:
			return nil, fmt.Errorf("invalid bool text representation: %q", src)
		}
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for bool", f)
	}
	if len(src) != 1 {
		return nil, fmt.Errorf("invalid bool binary length: %d", len(src))
	}

	return src[0] != 0, nil
}

// --- int2 ---

func serializeInt2(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asInt64(value)
	if err != nil {
		return 0, err
	}

	if f == format.Text {
		s := strconv.FormatInt(v, 10)
		if dst == nil {
			return len(s), nil
		}
		return copy(dst, s), nil
	}

	if dst == nil {
		return 2, nil
	}
	binary.BigEndian.PutUint16(dst, uint16(int16(v)))
	return 2, nil
}

func deserializeInt2(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		v, err := strconv.ParseInt(string(src), 10, 16)
		if err != nil {
			return nil, err
		}
		return int16(v), nil
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for int2", f)
	}
	if len(src) != 2 {
		return nil, fmt.Errorf("invalid int2 binary length: %d", len(src))
	}

	return int16(binary.BigEndian.Uint16(src)), nil
}

// --- int4 ---

func serializeInt4(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asInt64(value)
	if err != nil {
		return 0, err
	}

	if f == format.Text {
		s := strconv.FormatInt(v, 10)
		if dst == nil {
			return len(s), nil
		}
		return copy(dst, s), nil
	}

	if dst == nil {
		return 4, nil
	}
	binary.BigEndian.PutUint32(dst, uint32(int32(v)))
	return 4, nil
}

func deserializeInt4(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		v, err := strconv.ParseInt(string(src), 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for int4", f)
	}
	if len(src) != 4 {
		return nil, fmt.Errorf("invalid int4 binary length: %d", len(src))
	}

	return int32(binary.BigEndian.Uint32(src)), nil
}

// --- int8 ---

func serializeInt8(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asInt64(value)
	if err != nil {
		return 0, err
	}

	if f == format.Text {
		s := strconv.FormatInt(v, 10)
		if dst == nil {
			return len(s), nil
		}
		return copy(dst, s), nil
	}

	if dst == nil {
		return 8, nil
	}
	binary.BigEndian.PutUint64(dst, uint64(v))
	return 8, nil
}

func deserializeInt8(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		v, err := strconv.ParseInt(string(src), 10, 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for int8", f)
	}
	if len(src) != 8 {
		return nil, fmt.Errorf("invalid int8 binary length: %d", len(src))
	}

	return int64(binary.BigEndian.Uint64(src)), nil
}

func asInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected an integer value, got %T", value)
	}
}

// --- float4/float8 ---

func serializeFloat4(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asFloat64(value)
	if err != nil {
		return 0, err
	}

	if f == format.Text {
		s := strconv.FormatFloat(v, 'g', -1, 32)
		if dst == nil {
			return len(s), nil
		}
		return copy(dst, s), nil
	}

	if dst == nil {
		return 4, nil
	}
	binary.BigEndian.PutUint32(dst, math.Float32bits(float32(v)))
	return 4, nil
}

func deserializeFloat4(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		v, err := strconv.ParseFloat(string(src), 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for float4", f)
	}
	if len(src) != 4 {
		return nil, fmt.Errorf("invalid float4 binary length: %d", len(src))
	}

	return math.Float32frombits(binary.BigEndian.Uint32(src)), nil
}

func serializeFloat8(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asFloat64(value)
	if err != nil {
		return 0, err
	}

	if f == format.Text {
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if dst == nil {
			return len(s), nil
		}
		return copy(dst, s), nil
	}

	if dst == nil {
		return 8, nil
	}
	binary.BigEndian.PutUint64(dst, math.Float64bits(v))
	return 8, nil
}

func deserializeFloat8(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		v, err := strconv.ParseFloat(string(src), 64)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for float8", f)
	}
	if len(src) != 8 {
		return nil, fmt.Errorf("invalid float8 binary length: %d", len(src))
	}

	return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected a float value, got %T", value)
	}
}

// --- text/varchar/char (canonical TEXT, accepted as either format) ---

func serializeText(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asString(value)
	if err != nil {
		return 0, err
	}

	if dst == nil {
		return len(v), nil
	}

	return copy(dst, v), nil
}

func deserializeText(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	return string(src), nil
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected a string-like value, got %T", value)
	}
}

// --- bytea (canonical BINARY, raw passthrough) ---

func serializeBytea(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, ok := value.([]byte)
	if !ok {
		return 0, fmt.Errorf("expected []byte, got %T", value)
	}

	if dst == nil {
		return len(v), nil
	}

	return copy(dst, v), nil
}

func deserializeBytea(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	cp := make([]byte, len(src))
	copy(cp, src)
	return cp, nil
}
