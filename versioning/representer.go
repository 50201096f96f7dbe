package versioning

import (
	"encoding/json"
	"reflect"

	"versiond/transform"
)

// Representer builds the latest-version payload of an entity. For an absent
// entity (nil) it returns its canonical absent representation.
type Representer interface {
	Represent(instance any) (*transform.Payload, error)
}

// RepresenterFunc adapts a function into a Representer.
type RepresenterFunc func(instance any) (*transform.Payload, error)

func (f RepresenterFunc) Represent(instance any) (*transform.Payload, error) { return f(instance) }

// StructRepresenter represents entities through their encoding/json form,
// so field names and order follow the struct tags. The absent
// representation is a nil payload, which encodes as null.
type StructRepresenter struct{}

func (StructRepresenter) Represent(instance any) (*transform.Payload, error) {
	if IsAbsent(instance) {
		return nil, nil
	}
	raw, err := json.Marshal(instance)
	if err != nil {
		return nil, err
	}
	p := transform.NewPayload()
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PayloadRepresenter represents a *transform.Payload entity by a copy of
// itself. The absent representation is an empty payload.
type PayloadRepresenter struct{}

func (PayloadRepresenter) Represent(instance any) (*transform.Payload, error) {
	p, _ := instance.(*transform.Payload)
	if p == nil {
		return transform.NewPayload(), nil
	}
	return p.Clone(), nil
}

// IsAbsent reports whether instance carries no entity: a nil interface or a
// nil pointer, map, slice or interface inside one.
func IsAbsent(instance any) bool {
	if instance == nil {
		return true
	}
	v := reflect.ValueOf(instance)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
