package transform

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Directory is the table of transform families, grouped by namespace.
// Families are declared once, normally from init(), and only read after.
type Directory struct {
	mu         sync.RWMutex
	namespaces map[string]*Namespace
}

// Namespace groups the families declared under one name.
type Namespace struct {
	name     string
	families map[string]*Family
}

// Family is the set of steps sharing a locator, keyed by version index.
type Family struct {
	mu      *sync.RWMutex
	locator string
	steps   map[int]Factory
}

func NewDirectory() *Directory {
	return &Directory{namespaces: map[string]*Namespace{}}
}

// Default is the directory Register and MustRegister write to.
var Default = NewDirectory()

// Register declares step index of the family at locator in Default.
func Register(locator string, index int, f Factory) error {
	return Default.Register(locator, index, f)
}

// MustRegister is Register for init() blocks.
func MustRegister(locator string, index int, f Factory) {
	if err := Default.Register(locator, index, f); err != nil {
		panic(err)
	}
}

// SplitLocator splits "namespace.BaseName" on its last dot.
func SplitLocator(locator string) (namespace, base string, err error) {
	i := strings.LastIndex(locator, ".")
	if i <= 0 || i == len(locator)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedLocator, locator)
	}
	return locator[:i], locator[i+1:], nil
}

func (d *Directory) Register(locator string, index int, f Factory) error {
	ns, base, err := SplitLocator(locator)
	if err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("transform %s: negative version index %d", locator, index)
	}
	if f == nil {
		return fmt.Errorf("transform %s: nil factory for step %04d", locator, index)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.namespaces[ns]
	if !ok {
		n = &Namespace{name: ns, families: map[string]*Family{}}
		d.namespaces[ns] = n
	}
	fam, ok := n.families[base]
	if !ok {
		fam = &Family{mu: &d.mu, locator: locator, steps: map[int]Factory{}}
		n.families[base] = fam
	}
	if _, dup := fam.steps[index]; dup {
		return fmt.Errorf("%w: %s step %04d", ErrDuplicateIndex, locator, index)
	}
	fam.steps[index] = f
	return nil
}

// Family returns the family at locator. A missing namespace is an error; a
// missing family inside an existing namespace is reported through ok.
func (d *Directory) Family(locator string) (fam *Family, ok bool, err error) {
	ns, base, err := SplitLocator(locator)
	if err != nil {
		return nil, false, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, found := d.namespaces[ns]
	if !found {
		return nil, false, fmt.Errorf("%w: %q", ErrNamespaceNotFound, ns)
	}
	fam, ok = n.families[base]
	return fam, ok, nil
}

// Namespaces lists the declared namespace names, sorted.
func (d *Directory) Namespaces() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := lo.Keys(d.namespaces)
	slices.Sort(names)
	return names
}

func (f *Family) Locator() string { return f.locator }

// Indices returns the declared version indices in ascending order.
func (f *Family) Indices() []int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	idx := lo.Keys(f.steps)
	slices.Sort(idx)
	return idx
}

// Latest is the highest version the family converts into. A family with
// no steps only knows version 1.
func (f *Family) Latest() int {
	if f == nil {
		return 1
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.steps) == 0 {
		return 1
	}
	return slices.Max(lo.Keys(f.steps))
}

// above returns the steps whose index is strictly greater than base.
func (f *Family) above(base int) map[int]Factory {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lo.PickBy(f.steps, func(index int, _ Factory) bool { return index > base })
}
