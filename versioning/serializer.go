package versioning

import (
	"context"
	"fmt"
	"time"

	"versiond/internal/logging"
	"versiond/transform"
)

// Serializer represents entities and downgrades them to the version the
// request is pinned to.
type Serializer struct {
	// Base is the transform family locator, "namespace.BaseName".
	Base        string
	Representer Representer
	Resolver    transform.Resolver
	Observer    Observer
}

// ToRepresentation returns the payload of instance at the version pinned by
// the request in ctx. An absent instance yields the representer's absent
// representation, and a missing request or version yields the latest
// representation; neither consults the resolver.
func (s *Serializer) ToRepresentation(ctx context.Context, instance any) (*transform.Payload, error) {
	if s.Base == "" {
		return nil, fmt.Errorf("%w: serializer cannot demote outgoing resources without transforms", ErrTransformBaseNotDeclared)
	}

	data, err := s.representer().Represent(instance)
	if err != nil {
		return nil, err
	}
	if IsAbsent(instance) {
		return data, nil
	}

	req, ok := transform.RequestFromContext(ctx)
	if !ok {
		return data, nil
	}
	version, ok := req.Version()
	if !ok {
		return data, nil
	}

	start := time.Now()
	steps, err := s.resolver().Resolve(s.Base, version, true)
	if err != nil {
		observe(s.Observer, s.Base, transform.Backwards, 0, start, err)
		return nil, err
	}
	out, err := transform.Backward(s.Base, steps, data, req, instance)
	observe(s.Observer, s.Base, transform.Backwards, len(steps), start, err)
	if err != nil {
		return nil, err
	}
	logging.L().Debug("versioning: demoted payload", "family", s.Base, "to", version, "steps", len(steps))
	return out, nil
}

func (s *Serializer) representer() Representer {
	if s.Representer == nil {
		return StructRepresenter{}
	}
	return s.Representer
}

func (s *Serializer) resolver() transform.Resolver {
	if s.Resolver == nil {
		return transform.NewResolver(nil)
	}
	return s.Resolver
}
