package pgtype

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

func TestRegistryBuiltinsRoundTrip(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name  string
		oid   oid.Oid
		value interface{}
	}{
		{"bool", oid.Bool, true},
		{"int2", oid.Int2, int16(-7)},
		{"int4", oid.Int4, int32(1234)},
		{"int8", oid.Int8, int64(-9876543210)},
		{"float4", oid.Float4, float32(3.25)},
		{"float8", oid.Float8, float64(2.71828)},
		{"text", oid.Text, "hello, world"},
		{"varchar", oid.Varchar, "varchar value"},
		{"bytea", oid.Bytea, []byte{0x01, 0x02, 0xff}},
	}

	for _, tc := range cases {
		for _, f := range []format.Code{format.Text, format.Binary} {
			t.Run(tc.name+"/"+f.String(), func(t *testing.T) {
				wire, err := r.Serialize(tc.oid, f, tc.value)
				require.NoError(t, err)

				got, err := r.Deserialize(tc.oid, f, false, wire)
				require.NoError(t, err)
				require.Equal(t, tc.value, got)
			})
		}
	}
}

func TestRegistryDeserializeNull(t *testing.T) {
	r := NewRegistry()

	value, err := r.Deserialize(oid.Text, format.Text, true, nil)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestRegistrySerializeNull(t *testing.T) {
	r := NewRegistry()

	wire, err := r.Serialize(oid.Int4, format.Text, nil)
	require.NoError(t, err)
	require.Nil(t, wire)
}

func TestRegistryUnknownOIDTextFallsBackToText(t *testing.T) {
	r := NewRegistry()

	wire, err := r.Serialize(9999999, format.Text, "plain text")
	require.NoError(t, err)

	value, err := r.Deserialize(9999999, format.Text, false, wire)
	require.NoError(t, err)
	require.Equal(t, "plain text", value)
}

func TestRegistryUnknownOIDBinaryFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.Deserialize(9999999, format.Binary, false, []byte{0, 1, 2, 3})
	require.Error(t, err)
}

func TestRequireRejectsNull(t *testing.T) {
	r := NewRegistry()
	codec, ok := r.Lookup(oid.Int4)
	require.True(t, ok)

	strict := Require(codec.Deserialize)
	_, err := strict(format.Text, true, nil)
	require.Error(t, err)
}

func TestRegisterOverridesBuiltin(t *testing.T) {
	r := NewRegistry()

	called := false
	r.Register(oid.Int4, Codec{
		Name:            "int4-custom",
		CanonicalFormat: format.Text,
		Serialize: func(f format.Code, value interface{}, dst []byte) (int, error) {
			called = true
			if dst == nil {
				return 1, nil
			}
			dst[0] = 'x'
			return 1, nil
		},
		Deserialize: func(f format.Code, isNull bool, src []byte) (interface{}, error) {
			return "custom", nil
		},
	})

	wire, err := r.Serialize(oid.Int4, format.Text, 42)
	require.NoError(t, err)
	require.True(t, called)

	value, err := r.Deserialize(oid.Int4, format.Text, false, wire)
	require.NoError(t, err)
	require.Equal(t, "custom", value)
}
