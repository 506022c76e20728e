package pgtype

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

func TestNumericRoundTripText(t *testing.T) {
	r := NewRegistry()
	v := decimal.RequireFromString("256.23")

	wire, err := r.Serialize(oid.Numeric, format.Text, v)
	require.NoError(t, err)
	require.Equal(t, "256.23", string(wire))

	value, err := r.Deserialize(oid.Numeric, format.Text, false, wire)
	require.NoError(t, err)
	require.True(t, v.Equal(value.(decimal.Decimal)))
}

func TestNumericSerializeAcceptsStringAndFloat(t *testing.T) {
	r := NewRegistry()

	wire, err := r.Serialize(oid.Numeric, format.Text, "12.50")
	require.NoError(t, err)
	require.Equal(t, "12.5", string(wire))

	wire2, err := r.Serialize(oid.Numeric, format.Text, 3.5)
	require.NoError(t, err)
	require.Equal(t, "3.5", string(wire2))
}

func TestNumericBinaryFormatUnsupported(t *testing.T) {
	r := NewRegistry()

	_, err := r.Serialize(oid.Numeric, format.Binary, decimal.RequireFromString("1"))
	require.Error(t, err)

	_, err = r.Deserialize(oid.Numeric, format.Binary, false, []byte{0})
	require.Error(t, err)
}

func TestNumericNull(t *testing.T) {
	r := NewRegistry()

	wire, err := r.Serialize(oid.Numeric, format.Text, nil)
	require.NoError(t, err)
	require.Nil(t, wire)

	value, err := r.Deserialize(oid.Numeric, format.Text, true, nil)
	require.NoError(t, err)
	require.Nil(t, value)
}
