package pgtype

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

// registerNumeric installs the OID 1700 (NUMERIC) codec backed by
// shopspring/decimal. The wire's NUMERIC binary representation is a
// variable-length base-10000 digit-group encoding distinct from every
// other fixed-width numeric type this registry handles; this codec only
// implements the TEXT format, which decimal.Decimal marshals to and from
// losslessly.
func registerNumeric(r *Registry) {
	r.Register(oid.Numeric, Codec{
		Name:            "numeric",
		CanonicalFormat: format.Text,
		Serialize:       serializeNumeric,
		Deserialize:     deserializeNumeric,
	})
}

func serializeNumeric(f format.Code, value interface{}, dst []byte) (int, error) {
	if value == nil {
		return -1, nil
	}

	v, err := asDecimal(value)
	if err != nil {
		return 0, err
	}

	if f != format.Text {
		return 0, fmt.Errorf("unsupported format code %d for numeric", f)
	}

	s := v.String()
	if dst == nil {
		return len(s), nil
	}

	return copy(dst, s), nil
}

func deserializeNumeric(f format.Code, isNull bool, src []byte) (interface{}, error) {
	if isNull {
		return nil, nil
	}

	if f != format.Text {
		return nil, fmt.Errorf("unsupported format code %d for numeric", f)
	}

	v, err := decimal.NewFromString(string(src))
	if err != nil {
		return nil, err
	}

	return v, nil
}

func asDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		return *v, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("expected a decimal.Decimal, got %T", value)
	}
}
