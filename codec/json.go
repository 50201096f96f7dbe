package codec

import (
	"encoding/json"
	"io"

	"versiond/transform"
)

const MediaTypeJSON = "application/json"

// JSON keeps object field order in both directions.
type JSON struct{}

func (JSON) MediaType() string { return MediaTypeJSON }

func (JSON) Decode(r io.Reader) (*transform.Payload, error) {
	p := transform.NewPayload()
	if err := json.NewDecoder(r).Decode(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (JSON) Encode(w io.Writer, p *transform.Payload) error {
	return json.NewEncoder(w).Encode(p)
}
