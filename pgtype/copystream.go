package pgtype

import (
	"bytes"
	"fmt"

	pgxtype "github.com/jackc/pgx/v5/pgtype"

	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

// CopyOutScanner decodes the rows of a COPY ... TO STDOUT stream. Each
// CopyData frame arriving from the backend during a copy-out is handed to
// ScanRow, which decodes columns through jackc/pgx/v5/pgtype.
type CopyOutScanner struct {
	typeMap *pgxtype.Map
	oids    []oid.Oid
	format  format.Code
}

// NewCopyOutScanner builds a scanner for a COPY stream whose columns have
// the given OIDs, encoded in the given overall format (as reported by
// CopyOutResponse).
func NewCopyOutScanner(tm *pgxtype.Map, oids []oid.Oid, f format.Code) *CopyOutScanner {
	if tm == nil {
		tm = pgxtype.NewMap()
	}

	return &CopyOutScanner{typeMap: tm, oids: oids, format: f}
}

// ScanRow decodes a single CopyData frame body into one value per column.
func (s *CopyOutScanner) ScanRow(row []byte) ([]any, error) {
	if s.format == format.Binary {
		return s.scanBinaryRow(row)
	}

	return s.scanTextRow(row)
}

func (s *CopyOutScanner) scanBinaryRow(row []byte) ([]any, error) {
	if len(row) < 2 {
		return nil, fmt.Errorf("copy binary row too short: %d bytes", len(row))
	}

	count := int(row[0])<<8 | int(row[1])
	row = row[2:]

	values := make([]any, count)
	for i := 0; i < count; i++ {
		if len(row) < 4 {
			return nil, fmt.Errorf("copy binary row truncated at field %d", i)
		}

		length := int32(row[0])<<24 | int32(row[1])<<16 | int32(row[2])<<8 | int32(row[3])
		row = row[4:]

		if length < 0 {
			values[i] = nil
			continue
		}

		if len(row) < int(length) {
			return nil, fmt.Errorf("copy binary row field %d truncated", i)
		}

		value, err := s.decode(i, int16(format.Binary), row[:length])
		if err != nil {
			return nil, err
		}

		values[i] = value
		row = row[length:]
	}

	return values, nil
}

// scanTextRow splits a COPY TEXT format row on tabs, undoing the backslash
// escapes PostgreSQL uses ("\N" for NULL, "\t"/"\n"/"\\" for literal bytes).
func (s *CopyOutScanner) scanTextRow(row []byte) ([]any, error) {
	fields := bytes.Split(row, []byte{'\t'})
	values := make([]any, len(fields))

	for i, field := range fields {
		if string(field) == `\N` {
			values[i] = nil
			continue
		}

		unescaped := unescapeCopyText(field)

		value, err := s.decode(i, int16(format.Text), unescaped)
		if err != nil {
			return nil, err
		}

		values[i] = value
	}

	return values, nil
}

func (s *CopyOutScanner) decode(column int, wireFormat int16, value []byte) (any, error) {
	if column >= len(s.oids) {
		return nil, fmt.Errorf("unexpected column %d, only %d columns declared", column, len(s.oids))
	}

	typed, ok := s.typeMap.TypeForOID(uint32(s.oids[column]))
	if !ok {
		return string(value), nil
	}

	return typed.Codec.DecodeValue(s.typeMap, typed.OID, wireFormat, value)
}

func unescapeCopyText(field []byte) []byte {
	if !bytes.ContainsRune(field, '\\') {
		return field
	}

	out := make([]byte, 0, len(field))
	for i := 0; i < len(field); i++ {
		if field[i] != '\\' || i == len(field)-1 {
			out = append(out, field[i])
			continue
		}

		i++
		switch field[i] {
		case 't':
			out = append(out, '\t')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case '\\':
			out = append(out, '\\')
		default:
			out = append(out, field[i])
		}
	}

	return out
}
