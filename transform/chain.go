package transform

import "versiond/internal/logging"

// Direction names which half of a Transform a chain runs.
type Direction int

const (
	Forwards Direction = iota
	Backwards
)

func (d Direction) String() string {
	if d == Backwards {
		return "backwards"
	}
	return "forwards"
}

// Forward runs Forwards of every step in order, feeding each step a clone of
// the previous output. family only labels errors. The input payload is not
// modified.
func Forward(family string, steps []Step, p *Payload, req *Request) (*Payload, error) {
	cur := p
	for _, s := range steps {
		out, err := s.New().Forwards(cur.Clone(), req)
		if err != nil {
			return nil, &StepError{Family: family, Index: s.Index, Direction: Forwards, Err: err}
		}
		logging.L().Debug("transform: applied step", "family", family, "step", s.Index, "direction", Forwards)
		cur = out
	}
	return cur, nil
}

// Backward runs Backwards of every step in order, passing instance to each.
func Backward(family string, steps []Step, p *Payload, req *Request, instance any) (*Payload, error) {
	cur := p
	for _, s := range steps {
		out, err := s.New().Backwards(cur.Clone(), req, instance)
		if err != nil {
			return nil, &StepError{Family: family, Index: s.Index, Direction: Backwards, Err: err}
		}
		logging.L().Debug("transform: applied step", "family", family, "step", s.Index, "direction", Backwards)
		cur = out
	}
	return cur, nil
}
