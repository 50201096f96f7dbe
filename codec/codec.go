// Package codec decodes request bodies into payloads and encodes payloads
// back, selected by media type.
package codec

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"

	"versiond/transform"
)

// ErrUnsupportedMediaType is returned by Lookup when no codec serves a
// media type.
var ErrUnsupportedMediaType = errors.New("codec: unsupported media type")

// Codec converts between a byte stream and a payload.
type Codec interface {
	// MediaType is the canonical type this codec is registered under.
	MediaType() string
	Decode(r io.Reader) (*transform.Payload, error)
	Encode(w io.Writer, p *transform.Payload) error
}

// Registry maps media types to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
	suffix map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: map[string]Codec{}, suffix: map[string]Codec{}}
}

// Default holds the JSON, YAML and protobuf codecs.
var Default = func() *Registry {
	r := NewRegistry()
	r.Register(JSON{}, "+json")
	r.Register(YAML{}, "+yaml")
	r.Register(ProtoStruct{})
	return r
}()

// Register adds c under its media type. Structured-syntax suffixes such as
// "+json" route vendor types (application/vnd.acme.widget+json) to c when
// no exact entry exists.
func (r *Registry) Register(c Codec, suffixes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.MediaType()] = c
	for _, s := range suffixes {
		r.suffix[s] = c
	}
}

// Lookup finds the codec for a Content-Type or Accept value. Parameters
// (charset, version, ...) are ignored.
func (r *Registry) Lookup(mediaType string) (Codec, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedMediaType, mediaType, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.codecs[mt]; ok {
		return c, nil
	}
	if i := strings.LastIndex(mt, "+"); i >= 0 {
		if c, ok := r.suffix[mt[i:]]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mt)
}

// MediaTypes lists the exact media types registered.
func (r *Registry) MediaTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.codecs))
	for mt := range r.codecs {
		out = append(out, mt)
	}
	return out
}
