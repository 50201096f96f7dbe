package transform

import (
	"slices"

	"github.com/samber/lo"

	"versiond/internal/logging"
)

// Resolver returns the steps of a family that lie above base. With reverse
// false the steps are ascending (the order Forward applies them); with
// reverse true they are descending (the order Backward applies them).
type Resolver interface {
	Resolve(locator string, base int, reverse bool) ([]Step, error)
}

// ResolverFunc adapts a function into a Resolver.
type ResolverFunc func(locator string, base int, reverse bool) ([]Step, error)

func (f ResolverFunc) Resolve(locator string, base int, reverse bool) ([]Step, error) {
	return f(locator, base, reverse)
}

// DirectoryResolver resolves families declared in a Directory. It reads the
// directory on every call.
type DirectoryResolver struct {
	dir *Directory
}

// NewResolver returns a resolver over dir, or over Default when dir is nil.
func NewResolver(dir *Directory) *DirectoryResolver {
	if dir == nil {
		dir = Default
	}
	return &DirectoryResolver{dir: dir}
}

func (r *DirectoryResolver) Resolve(locator string, base int, reverse bool) ([]Step, error) {
	fam, ok, err := r.dir.Family(locator)
	if err != nil {
		return nil, err
	}
	if !ok {
		logging.L().Debug("transform: no family declared", "locator", locator)
		return []Step{}, nil
	}

	steps := fam.above(base)
	keys := lo.Keys(steps)
	slices.Sort(keys)
	if reverse {
		slices.Reverse(keys)
	}

	out := make([]Step, 0, len(keys))
	for _, k := range keys {
		out = append(out, Step{Index: k, New: steps[k]})
	}
	logging.L().Debug("transform: resolved chain", "locator", locator, "base", base, "reverse", reverse, "steps", len(out))
	return out, nil
}
