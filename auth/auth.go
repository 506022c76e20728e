// Package auth implements the client-side authenticator: it consumes the
// first Authentication message and optionally exchanges password/MD5
// challenge messages, emitting AuthenticationOk or failing.
package auth

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pgproto"
	"github.com/pgwireclient/pgwire/pkg/buffer"
	"github.com/pgwireclient/pgwire/pkg/types"
)

// Credentials carries the username/password pair an authenticator may need
// to answer a challenge.
type Credentials struct {
	Username string
	Password string
}

// Negotiate drives the authentication exchange on behalf of a Session: it
// reads Authentication messages off reader, answers Cleartext/MD5
// challenges by staging and flushing a PasswordMessage through send, and
// returns once AuthenticationOk arrives. An ErrorResponse or an
// unsupported mechanism both return an error and leave the session to be
// closed by the caller.
func Negotiate(ctx context.Context, reader *buffer.Reader, send func([]byte) error, creds Credentials) error {
	for {
		t, _, err := reader.ReadTypedMsg()
		if err != nil {
			return err
		}

		switch t {
		case types.BackendErrorResponse:
			fields, err := pgproto.ParseErrorFields(reader)
			if err != nil {
				return err
			}

			return pgerr.NewBackendError(fields)

		case types.BackendAuth:
			msg, err := pgproto.ParseAuthentication(reader)
			if err != nil {
				return err
			}

			switch msg.Type {
			case types.AuthOk:
				return nil

			case types.AuthCleartextPassword:
				if err := sendPassword(send, creds.Password); err != nil {
					return err
				}

			case types.AuthMD5Password:
				if err := sendPassword(send, md5Digest(creds.Username, creds.Password, msg.Salt)); err != nil {
					return err
				}

			default:
				return pgerr.NewAuthenticationError(fmt.Sprintf("unsupported authentication mechanism: %d", msg.Type))
			}

		default:
			return pgerr.NewProtocolError(fmt.Sprintf("unexpected message %q during authentication", t))
		}
	}
}

// sendPassword frames and flushes a single PasswordMessage.
func sendPassword(send func([]byte) error, password string) error {
	var buf bytes.Buffer
	w := buffer.NewWriter(nil, &buf)

	if err := pgproto.WritePassword(w, password); err != nil {
		return err
	}

	return send(buf.Bytes())
}

// md5Digest computes "md5" + hex_lower(md5(hex_lower(md5(password||user)) || salt)),
// the challenge response AuthMD5Password expects.
func md5Digest(username, password string, salt []byte) string {
	inner := md5.Sum([]byte(password + username))
	innerHex := hex.EncodeToString(inner[:])

	outer := md5.Sum(append([]byte(innerHex), salt...))
	return "md5" + hex.EncodeToString(outer[:])
}
