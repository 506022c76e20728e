package pgproto

import "github.com/pgwireclient/pgwire/pkg/buffer"

// ParseErrorFields parses the (field-type byte, C-string)* sequence shared
// by ErrorResponse and NoticeResponse, terminated by a single zero byte.
// The returned map is keyed by the raw field-type byte, per
// https://www.postgresql.org/docs/current/protocol-error-fields.html.
func ParseErrorFields(r *buffer.Reader) (map[byte]string, error) {
	fields := make(map[byte]string, 8)

	for {
		t, err := r.GetByte()
		if err != nil {
			return nil, err
		}

		if t == 0 {
			if err := r.ExpectDone("ErrorResponse or NoticeResponse"); err != nil {
				return nil, err
			}

			return fields, nil
		}

		value, err := r.GetString()
		if err != nil {
			return nil, err
		}

		fields[t] = value
	}
}
