package transform

// Transform converts a payload across one version boundary. Implementations
// hold no state; a fresh value is built from its Factory for every chain.
type Transform interface {
	// Forwards converts a payload from the previous version into this
	// step's version.
	Forwards(p *Payload, req *Request) (*Payload, error)
	// Backwards converts a payload from this step's version into the
	// previous one. instance is the entity being serialized and may be read
	// to restore fields the forward direction dropped.
	Backwards(p *Payload, req *Request, instance any) (*Payload, error)
}

// Factory builds a Transform.
type Factory func() Transform

// Step is one resolved entry of a family: its version index and constructor.
type Step struct {
	Index int
	New   Factory
}

// UnimplementedTransform can be embedded to satisfy Transform while only
// some directions are written. Invoking a missing direction fails with
// ErrNotImplemented.
type UnimplementedTransform struct{}

func (UnimplementedTransform) Forwards(*Payload, *Request) (*Payload, error) {
	return nil, notImplemented("Forwards")
}

func (UnimplementedTransform) Backwards(*Payload, *Request, any) (*Payload, error) {
	return nil, notImplemented("Backwards")
}

// Func adapts a pair of functions into a Transform.
type Func struct {
	Forward  func(p *Payload, req *Request) (*Payload, error)
	Backward func(p *Payload, req *Request, instance any) (*Payload, error)
}

func (f Func) Forwards(p *Payload, req *Request) (*Payload, error) {
	if f.Forward == nil {
		return nil, notImplemented("Forwards")
	}
	return f.Forward(p, req)
}

func (f Func) Backwards(p *Payload, req *Request, instance any) (*Payload, error) {
	if f.Backward == nil {
		return nil, notImplemented("Backwards")
	}
	return f.Backward(p, req, instance)
}
