package versioning

import (
	"context"
	"fmt"
	"io"
	"time"

	"versiond/codec"
	"versiond/internal/logging"
	"versiond/transform"
)

// Parser decodes request bodies and upgrades them to the latest version of
// the family at Base.
type Parser struct {
	// Base is the transform family locator, "namespace.BaseName".
	Base string
	// MediaType is used when Parse is given none.
	MediaType string
	Codecs    *codec.Registry
	Resolver  transform.Resolver
	Observer  Observer
}

// Parse decodes r and, when the request in ctx carries a version, runs the
// family's forward chain above it. Without a version the decoded payload is
// returned as is.
func (p *Parser) Parse(ctx context.Context, r io.Reader, mediaType string) (*transform.Payload, error) {
	if p.Base == "" {
		return nil, fmt.Errorf("%w: parser cannot promote incoming resources without transforms", ErrTransformBaseNotDeclared)
	}

	c, err := p.codec(mediaType)
	if err != nil {
		return nil, err
	}
	data, err := c.Decode(r)
	if err != nil {
		return nil, err
	}

	req, _ := transform.RequestFromContext(ctx)
	version, ok := req.Version()
	if !ok {
		return data, nil
	}

	start := time.Now()
	steps, err := p.resolver().Resolve(p.Base, version, false)
	if err != nil {
		observe(p.Observer, p.Base, transform.Forwards, 0, start, err)
		return nil, err
	}
	out, err := transform.Forward(p.Base, steps, data, req)
	observe(p.Observer, p.Base, transform.Forwards, len(steps), start, err)
	if err != nil {
		return nil, err
	}
	logging.L().Debug("versioning: promoted payload", "family", p.Base, "from", version, "steps", len(steps))
	return out, nil
}

func (p *Parser) codec(mediaType string) (codec.Codec, error) {
	if mediaType == "" {
		mediaType = p.MediaType
	}
	if mediaType == "" {
		mediaType = codec.MediaTypeJSON
	}
	reg := p.Codecs
	if reg == nil {
		reg = codec.Default
	}
	return reg.Lookup(mediaType)
}

func (p *Parser) resolver() transform.Resolver {
	if p.Resolver == nil {
		return transform.NewResolver(nil)
	}
	return p.Resolver
}
