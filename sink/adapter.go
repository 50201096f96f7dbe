// Package sink holds the change-event outputs. A sink receives events that
// were already serialized at the version it is pinned to.
package sink

import "fmt"

// Event is one serialized resource change.
type Event struct {
	Resource  string
	ID        string
	Action    string // "created", "updated"
	Version   int
	MediaType string
	Key       []byte
	Value     []byte
}

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error // driver-specific config struct
	Push(*Event) error
	Close() error // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
