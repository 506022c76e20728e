package pgerr

import (
	"errors"
	"fmt"

	"github.com/pgwireclient/pgwire/codes"
)

// Category classifies a failure into one of the client's error families.
type Category string

const (
	// TransportErr indicates the underlying byte stream failed: a read,
	// write, dial or TLS handshake returned an error that did not itself
	// originate from the wire protocol.
	TransportErr Category = "transport"
	// ConnectionClosedErr indicates the backend closed the connection,
	// gracefully or otherwise, while a request was outstanding.
	ConnectionClosedErr Category = "connection_closed"
	// AuthenticationErr indicates the negotiated authentication strategy
	// was rejected, or the backend requested a strategy the client does
	// not implement.
	AuthenticationErr Category = "authentication"
	// ProtocolErr indicates the backend sent a message sequence, or a
	// message body, that violates the wire protocol's invariants.
	ProtocolErr Category = "protocol"
	// SerializationErr indicates a parameter value could not be encoded
	// into its wire representation.
	SerializationErr Category = "serialization"
	// DeserializationErr indicates a column value could not be decoded
	// from its wire representation.
	DeserializationErr Category = "deserialization"
	// ClientErr indicates a caller used the client's API incorrectly,
	// e.g. binding the wrong number of parameters or reusing a closed
	// session.
	ClientErr Category = "client"
	// BackendErr indicates the backend reported the failure itself, via
	// an ErrorResponse message.
	BackendErr Category = "backend"
)

// WithCategory decorates the error with one of the client's error families.
func WithCategory(err error, category Category) error {
	if err == nil {
		return nil
	}

	return &withCategory{cause: err, category: category}
}

// GetCategory returns the category carried by err, or ClientErr if none was
// attached.
func GetCategory(err error) Category {
	if _, ok := AsBackendError(err); ok {
		return BackendErr
	}

	if c, ok := err.(*withCategory); ok {
		return c.category
	}

	if n := errors.Unwrap(err); n != nil {
		if inner := GetCategory(n); inner != "" {
			return inner
		}
	}

	return ClientErr
}

type withCategory struct {
	cause    error
	category Category
}

func (w *withCategory) Error() string { return w.cause.Error() }
func (w *withCategory) Unwrap() error { return w.cause }

// NewTransportError wraps a failure from the underlying transport (dial,
// read, write, TLS handshake).
func NewTransportError(cause error) error {
	return WithSeverity(WithCode(WithCategory(cause, TransportErr), codes.ConnectionFailure), LevelFatal)
}

// ErrConnectionClosed is returned by Session operations once the backend has
// closed the connection.
var ErrConnectionClosed = errors.New("connection closed")

// NewConnectionClosedError reports that the backend closed the connection
// while cause was read, if any.
func NewConnectionClosedError(cause error) error {
	err := error(ErrConnectionClosed)
	if cause != nil {
		err = fmt.Errorf("%w: %s", ErrConnectionClosed, cause)
	}

	return WithSeverity(WithCode(WithCategory(err, ConnectionClosedErr), codes.ConnectionDoesNotExist), LevelFatal)
}

// NewAuthenticationError reports that authentication failed or that the
// backend requested a strategy the client cannot satisfy.
func NewAuthenticationError(message string) error {
	err := errors.New(message)
	return WithSeverity(WithCode(WithCategory(err, AuthenticationErr), codes.InvalidPassword), LevelFatal)
}

// NewProtocolError reports a violation of the message-sequencing or
// framing invariants of the wire protocol.
func NewProtocolError(message string) error {
	err := errors.New(message)
	return WithSeverity(WithCode(WithCategory(err, ProtocolErr), codes.ProtocolViolation), LevelFatal)
}

// NewSerializationError wraps a failure to encode a parameter value for
// transmission in a Bind message.
func NewSerializationError(cause error) error {
	return WithCode(WithCategory(cause, SerializationErr), codes.InvalidTextRepresentation)
}

// NewDeserializationError wraps a failure to decode a column value out of a
// DataRow message.
func NewDeserializationError(cause error) error {
	return WithCode(WithCategory(cause, DeserializationErr), codes.InvalidTextRepresentation)
}

// NewClientError reports a misuse of the client API, independent of the
// wire protocol itself.
func NewClientError(message string) error {
	err := errors.New(message)
	return WithCode(WithCategory(err, ClientErr), codes.Uncategorized)
}
