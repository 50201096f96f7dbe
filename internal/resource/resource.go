// Package resource binds each manifest resource to its store and to the
// Parser and Serializer of its transform family.
package resource

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"versiond/codec"
	"versiond/internal/manifest"
	"versiond/transform"
	"versiond/versioning"
)

// Store persists entities of one resource in their latest shape.
type Store interface {
	Create(p *transform.Payload) (any, error)
	Update(id string, p *transform.Payload) (any, error)
	// Upsert stores p under id, creating the entity when id is new.
	Upsert(id string, p *transform.Payload) (entity any, created bool, err error)
	// Get returns a typed nil entity alongside a not-found error.
	Get(id string) (any, error)
	List() ([]any, error)
	IsNotFound(err error) bool
}

// Identified entities report the id change events are keyed by.
type Identified interface {
	ResourceID() string
}

// Kind is a resource implementation selectable from the manifest.
type Kind struct {
	NewStore func() Store
	// Representer defaults to versioning.StructRepresenter.
	Representer versioning.Representer
}

var (
	kindsMu sync.RWMutex
	kinds   = map[string]Kind{}
)

// RegisterKind makes a kind available to Build. It is called from init.
func RegisterKind(name string, k Kind) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[name] = k
}

func lookupKind(name string) (Kind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	k, ok := kinds[name]
	return k, ok
}

// Kinds lists the registered kind names, sorted.
func Kinds() []string {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	names := lo.Keys(kinds)
	slices.Sort(names)
	return names
}

// Resource is one served resource.
type Resource struct {
	Spec       manifest.ResourceSpec
	Parser     *versioning.Parser
	Serializer *versioning.Serializer
	Store      Store

	dir *transform.Directory
}

func (r *Resource) Name() string { return r.Spec.Name }

// Latest is the newest representation version of the resource.
func (r *Resource) Latest() int {
	fam, ok, err := r.dir.Family(r.Spec.TransformBase)
	if err != nil || !ok {
		return 1
	}
	return fam.Latest()
}

// Set is the ordered collection of resources built from a manifest.
type Set struct {
	order  []string
	byName map[string]*Resource
}

// Options carries the collaborators shared by every resource.
type Options struct {
	Directory *transform.Directory // transform.Default when nil
	Resolver  transform.Resolver
	Codecs    *codec.Registry
	Observer  versioning.Observer
}

// Build creates a store and pipelines for every resource in m.
func Build(m manifest.File, opts Options) (*Set, error) {
	if opts.Directory == nil {
		opts.Directory = transform.Default
	}
	if opts.Resolver == nil {
		opts.Resolver = transform.NewResolver(opts.Directory)
	}
	if opts.Codecs == nil {
		opts.Codecs = codec.Default
	}

	set := &Set{byName: map[string]*Resource{}}
	for _, spec := range m.Resources {
		k, ok := lookupKind(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("resource %s: unknown kind %q (have %v)", spec.Name, spec.Kind, Kinds())
		}
		rep := k.Representer
		if rep == nil {
			rep = versioning.StructRepresenter{}
		}
		set.order = append(set.order, spec.Name)
		set.byName[spec.Name] = &Resource{
			Spec: spec,
			Parser: &versioning.Parser{
				Base:      spec.TransformBase,
				MediaType: spec.MediaType,
				Codecs:    opts.Codecs,
				Resolver:  opts.Resolver,
				Observer:  opts.Observer,
			},
			Serializer: &versioning.Serializer{
				Base:        spec.TransformBase,
				Representer: rep,
				Resolver:    opts.Resolver,
				Observer:    opts.Observer,
			},
			Store: k.NewStore(),
			dir:   opts.Directory,
		}
	}
	return set, nil
}

func (s *Set) Get(name string) (*Resource, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// All returns the resources in manifest order.
func (s *Set) All() []*Resource {
	return lo.Map(s.order, func(n string, _ int) *Resource { return s.byName[n] })
}

// IDOf returns the id of entity, or "" when it does not expose one.
func IDOf(entity any) string {
	if e, ok := entity.(Identified); ok {
		return e.ResourceID()
	}
	return ""
}
