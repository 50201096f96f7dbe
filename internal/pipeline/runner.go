package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"versiond/codec"
	"versiond/internal/logging"
	"versiond/internal/resource"
	"versiond/sink"
	"versiond/source/kafka"
	"versiond/transform"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// binding is a sink together with the version and encoding it receives.
type binding struct {
	name      string
	sink      sink.Adapter
	resources map[string]bool // empty = all
	version   *int            // nil = latest
	codec     codec.Codec
}

func (b *binding) wants(resource string) bool {
	return len(b.resources) == 0 || b.resources[resource]
}

// Runner fans resource changes out to sinks, each at its pinned version,
// and feeds ingested broker messages through the resources' parsers.
type Runner struct {
	resources *resource.Set
	source    kafka.Adapter
	bindings  []*binding
}

func NewRunner(set *resource.Set) *Runner { return &Runner{resources: set} }

func (r *Runner) SetSource(s kafka.Adapter) { r.source = s }

// AddSink binds s to resources (all when empty) at version (latest when
// nil), encoded with c.
func (r *Runner) AddSink(name string, s sink.Adapter, resources []string, version *int, c codec.Codec) {
	b := &binding{name: name, sink: s, resources: map[string]bool{}, version: version, codec: c}
	for _, res := range resources {
		b.resources[res] = true
	}
	r.bindings = append(r.bindings, b)
}

// Publish serializes entity once per interested sink and pushes it. A
// failing sink does not stop the others.
func (r *Runner) Publish(ctx context.Context, res *resource.Resource, action string, entity any) error {
	var errs []error
	for _, b := range r.bindings {
		if !b.wants(res.Name()) {
			continue
		}
		if err := r.push(ctx, b, res, action, entity); err != nil {
			logging.L().Error("pipeline: sink push failed", "sink", b.name, "resource", res.Name(), "err", err)
			errs = append(errs, fmt.Errorf("sink %s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) push(ctx context.Context, b *binding, res *resource.Resource, action string, entity any) error {
	req := transform.NewRequest(entity)
	version := res.Latest()
	if b.version != nil {
		req = req.WithVersion(*b.version)
		version = min(*b.version, version)
	}
	p, err := res.Serializer.ToRepresentation(transform.ContextWithRequest(ctx, req), entity)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := b.codec.Encode(&buf, p); err != nil {
		return err
	}
	id := resource.IDOf(entity)
	return b.sink.Push(&sink.Event{
		Resource:  res.Name(),
		ID:        id,
		Action:    action,
		Version:   version,
		MediaType: b.codec.MediaType(),
		Key:       []byte(id),
		Value:     buf.Bytes(),
	})
}

// Ingest upgrades one broker message and stores it. A keyed message is
// upserted under its key; an unkeyed one creates an entity with a fresh id.
// Messages that cannot be parsed are logged and skipped.
func (r *Runner) Ingest(ctx context.Context, m *kafka.Message) error {
	log := logging.L().With("topic", m.Topic, "partition", m.Partition, "offset", m.Offset)

	res, ok := r.resources.Get(m.Resource)
	if !ok {
		log.Warn("pipeline: message for unknown resource", "resource", m.Resource)
		return nil
	}
	req := transform.NewRequest(m)
	if m.HasVersion {
		req = req.WithVersion(m.Version)
	}
	p, err := res.Parser.Parse(transform.ContextWithRequest(ctx, req), bytes.NewReader(m.Value), m.MediaType)
	if err != nil {
		log.Error("pipeline: dropping unparseable message", "resource", m.Resource, "err", err)
		return nil
	}

	action := ActionCreated
	var entity any
	if id := string(m.Key); id != "" {
		var created bool
		entity, created, err = res.Store.Upsert(id, p)
		if !created {
			action = ActionUpdated
		}
	} else {
		entity, err = res.Store.Create(p)
	}
	if err != nil {
		log.Error("pipeline: dropping message the store rejected", "resource", m.Resource, "err", err)
		return nil
	}
	if err := r.Publish(ctx, res, action, entity); err != nil {
		log.Warn("pipeline: change event not delivered everywhere", "err", err)
	}
	return nil
}

// Start consumes the source, if any, in the background.
func (r *Runner) Start(ctx context.Context) error {
	if r.source == nil {
		return nil
	}
	go func() {
		if err := r.source.Run(ctx, r.Ingest); err != nil && !errors.Is(err, context.Canceled) {
			logging.L().Error("pipeline: source stopped", "err", err)
		}
	}()
	return nil
}

func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, b := range r.bindings {
		errs = append(errs, b.sink.Close())
	}
	return errors.Join(errs...)
}
