package widgets

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"versiond/transform"
)

var ErrNotFound = errors.New("widgets: not found")

// Store keeps widgets in memory.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*Widget
}

func NewStore() *Store {
	return &Store{byID: map[string]*Widget{}}
}

// FromPayload decodes a latest-version payload into a widget.
func FromPayload(p *transform.Payload) (*Widget, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var w Widget
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("widgets: %w", err)
	}
	if w.RelatedIDs == nil {
		w.RelatedIDs = []int{}
	}
	return &w, nil
}

// Create stores a new widget built from p. An id in p is ignored.
func (s *Store) Create(p *transform.Payload) (any, error) {
	w, err := FromPayload(p)
	if err != nil {
		return nil, err
	}
	w.ID = uuid.NewString()
	s.mu.Lock()
	s.byID[w.ID] = w
	s.mu.Unlock()
	return copyOf(w), nil
}

// Update replaces the widget at id with one built from p.
func (s *Store) Update(id string, p *transform.Payload) (any, error) {
	w, err := FromPayload(p)
	if err != nil {
		return nil, err
	}
	w.ID = id
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.byID[id] = w
	return copyOf(w), nil
}

// Upsert stores the widget built from p under id, whether or not id exists.
func (s *Store) Upsert(id string, p *transform.Payload) (any, bool, error) {
	w, err := FromPayload(p)
	if err != nil {
		return nil, false, err
	}
	w.ID = id
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.byID[id]
	s.byID[id] = w
	return copyOf(w), !exists, nil
}

// Get returns the widget at id, or a nil *Widget when there is none.
func (s *Store) Get(id string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.byID[id]
	if !ok {
		return (*Widget)(nil), fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyOf(w), nil
}

// List returns all widgets ordered by id.
func (s *Store) List() ([]any, error) {
	s.mu.RLock()
	ws := lo.Values(s.byID)
	s.mu.RUnlock()
	slices.SortFunc(ws, func(a, b *Widget) int { return strings.Compare(a.ID, b.ID) })
	return lo.Map(ws, func(w *Widget, _ int) any { return copyOf(w) }), nil
}

func (s *Store) IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func copyOf(w *Widget) *Widget {
	c := *w
	c.RelatedIDs = slices.Clone(w.RelatedIDs)
	return &c
}
