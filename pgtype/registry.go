package pgtype

import (
	"fmt"
	"sync"

	"github.com/pgwireclient/pgwire/pgerr"
	"github.com/pgwireclient/pgwire/pkg/format"
	"github.com/pgwireclient/pgwire/pkg/oid"
)

// Registry is a read-mostly, OID-keyed table of Codecs, populated once at
// init and safe for concurrent lookups thereafter.
type Registry struct {
	mu     sync.RWMutex
	codecs map[oid.Oid]Codec
}

// NewRegistry returns a Registry preloaded with the built-in converters.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[oid.Oid]Codec, 16)}
	registerBuiltins(r)
	return r
}

// Default is the process-wide registry used when a Session is not given an
// explicit one.
var Default = NewRegistry()

// Register installs or replaces the codec for o.
func (r *Registry) Register(o oid.Oid, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[o] = c
}

// Lookup returns the codec registered for o, if any.
func (r *Registry) Lookup(o oid.Oid) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[o]
	return c, ok
}

// Serialize runs the two-pass Serializer contract for o's codec (or the
// text fallback for an unknown OID) and returns the wire bytes, or nil for
// a SQL NULL.
func (r *Registry) Serialize(o oid.Oid, f format.Code, value interface{}) ([]byte, error) {
	codec, ok := r.Lookup(o)
	if !ok {
		codec = textFallbackCodec
	}

	size, err := codec.Serialize(f, value, nil)
	if err != nil {
		return nil, pgerr.NewSerializationError(err)
	}
	if size < 0 {
		return nil, nil
	}

	dst := make([]byte, size)
	n, err := codec.Serialize(f, value, dst)
	if err != nil {
		return nil, pgerr.NewSerializationError(err)
	}
	if n != size {
		return nil, pgerr.NewSerializationError(fmt.Errorf("serializer reported size %d but wrote %d bytes", size, n))
	}

	return dst, nil
}

// Deserialize decodes a wire field body using o's codec. Lookup falls back
// to the text deserializer when f is TEXT and o is unknown; BINARY of an
// unknown OID fails.
func (r *Registry) Deserialize(o oid.Oid, f format.Code, isNull bool, src []byte) (interface{}, error) {
	codec, ok := r.Lookup(o)
	if !ok {
		if f == format.Binary {
			return nil, pgerr.NewDeserializationError(fmt.Errorf("no binary codec registered for OID %d", o))
		}

		codec = textFallbackCodec
	}

	value, err := codec.Deserialize(f, isNull, src)
	if err != nil {
		return nil, pgerr.NewDeserializationError(err)
	}

	return value, nil
}
