package pgtype

import (
	"testing"

	pgxtype "github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

func TestCopyOutScannerTextRow(t *testing.T) {
	s := NewCopyOutScanner(nil, []oid.Oid{oid.Text, oid.Int4}, format.Text)

	values, err := s.ScanRow([]byte("hello\t42"))
	require.NoError(t, err)
	require.Len(t, values, 2)
}

func TestCopyOutScannerTextNull(t *testing.T) {
	s := NewCopyOutScanner(nil, []oid.Oid{oid.Text}, format.Text)

	values, err := s.ScanRow([]byte(`\N`))
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Nil(t, values[0])
}

func TestCopyOutScannerTextUnescapesBackslashSequences(t *testing.T) {
	s := NewCopyOutScanner(nil, []oid.Oid{oid.Text}, format.Text)

	values, err := s.ScanRow([]byte(`line1\nline2\ttabbed\\slash`))
	require.NoError(t, err)
	require.Equal(t, "line1\nline2\ttabbed\\slash", values[0])
}

func TestCopyOutScannerBinaryRow(t *testing.T) {
	s := NewCopyOutScanner(pgxtype.NewMap(), []oid.Oid{oid.Int4}, format.Binary)

	row := []byte{
		0, 1, // field count
		0, 0, 0, 4, // field length
		0, 0, 0, 42, // int4 value, big endian
	}

	values, err := s.ScanRow(row)
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.EqualValues(t, 42, values[0])
}

func TestCopyOutScannerBinaryRowNullField(t *testing.T) {
	s := NewCopyOutScanner(pgxtype.NewMap(), []oid.Oid{oid.Int4}, format.Binary)

	row := []byte{
		0, 1,
		0xff, 0xff, 0xff, 0xff, // -1 length marks SQL NULL
	}

	values, err := s.ScanRow(row)
	require.NoError(t, err)
	require.Nil(t, values[0])
}

func TestCopyOutScannerBinaryRowTooShort(t *testing.T) {
	s := NewCopyOutScanner(nil, []oid.Oid{oid.Int4}, format.Binary)

	_, err := s.ScanRow([]byte{0})
	require.Error(t, err)
}

func TestCopyOutScannerBinaryRowTruncatedField(t *testing.T) {
	s := NewCopyOutScanner(nil, []oid.Oid{oid.Int4}, format.Binary)

	row := []byte{0, 1, 0, 0, 0, 4, 1, 2}
	_, err := s.ScanRow(row)
	require.Error(t, err)
}

func TestCopyOutScannerUnknownOIDFallsBackToRawString(t *testing.T) {
	s := NewCopyOutScanner(pgxtype.NewMap(), []oid.Oid{9999999}, format.Text)

	values, err := s.ScanRow([]byte("raw-value"))
	require.NoError(t, err)
	require.Equal(t, "raw-value", values[0])
}
