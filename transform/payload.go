package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"
)

// Payload is an insertion-ordered map of field name to value. Nested JSON
// objects decode into nested *Payload values so their order survives too.
// JSON numbers decode as json.Number and re-encode verbatim.
//
// A nil *Payload is valid for reads and encodes as JSON null.
type Payload struct {
	keys   []string
	values map[string]any
}

func NewPayload() *Payload {
	return &Payload{values: map[string]any{}}
}

// PayloadOf builds a payload from alternating key, value arguments.
func PayloadOf(kv ...any) *Payload {
	if len(kv)%2 != 0 {
		panic("transform: PayloadOf needs key/value pairs")
	}
	p := NewPayload()
	for i := 0; i < len(kv); i += 2 {
		p.Set(kv[i].(string), kv[i+1])
	}
	return p
}

func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Payload) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[key]
	return ok
}

func (p *Payload) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (p *Payload) Set(key string, v any) {
	if p.values == nil {
		p.values = map[string]any{}
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Delete removes key and returns the value it held.
func (p *Payload) Delete(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	if !ok {
		return nil, false
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Rename moves the value under from to to, in place. It reports whether
// from was present. An existing value under to is replaced.
func (p *Payload) Rename(from, to string) bool {
	if p == nil || from == to {
		return p.Has(from)
	}
	v, ok := p.values[from]
	if !ok {
		return false
	}
	if _, taken := p.values[to]; taken {
		p.Delete(to)
	}
	for i, k := range p.keys {
		if k == from {
			p.keys[i] = to
			break
		}
	}
	delete(p.values, from)
	p.values[to] = v
	return true
}

// Keys returns the field names in order.
func (p *Payload) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Range calls fn for every field in order until fn returns false.
func (p *Payload) Range(fn func(key string, v any) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return nil
	}
	out := &Payload{keys: make([]string, len(p.keys)), values: make(map[string]any, len(p.values))}
	copy(out.keys, p.keys)
	for k, v := range p.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Payload:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return deepcopy.Copy(v)
	}
}

// Map returns the payload as plain maps, nested payloads included. The
// order of fields is lost.
func (p *Payload) Map() map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Payload:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

func (p *Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping field order. JSON null
// leaves the payload empty.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Payload{values: map[string]any{}}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("transform: payload must be a JSON object")
	}
	out, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*p = *out
	return nil
}

func decodeObject(dec *json.Decoder) (*Payload, error) {
	p := NewPayload()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("transform: unexpected object key %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		p.Set(key, v)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		return decodeObject(dec)
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("transform: unexpected delimiter %v", d)
	}
}
