package pgtype

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

// registerUUID installs the OID 2950 codec backed by google/uuid, used by
// both the Bind parameter writer and the DataRow reader. The write path is
// BINARY, the 16-byte wire form.
func registerUUID(r *Registry) {
	r.Register(oid.UUID, Codec{
		Name:            "uuid",
		CanonicalFormat: format.Binary,
		Serialize:       serializeUUID,
		Deserialize:     deserializeUUID,
	})
}

func serializeUUID(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asUUID(value)
	if err != nil {
		return 0, err
	}

	if f == format.Text {
		s := v.String()
		if dst == nil {
			return len(s), nil
		}
		return copy(dst, s), nil
	}

	if dst == nil {
		return 16, nil
	}

	copy(dst, v[:])
	return 16, nil
}

func deserializeUUID(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f == format.Text {
		v, err := uuid.ParseBytes(src)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	if f != format.Binary {
		return nil, fmt.Errorf("unsupported format code %d for uuid", f)
	}
	if len(src) != 16 {
		return nil, fmt.Errorf("invalid uuid binary length: %d", len(src))
	}

	v, err := uuid.FromBytes(src)
	if err != nil {
		return nil, err
	}

	return v, nil
}

func asUUID(value interface{}) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case [16]byte:
		return uuid.UUID(v), nil
	default:
		return uuid.UUID{}, fmt.Errorf("expected a uuid.UUID, got %T", value)
	}
}
