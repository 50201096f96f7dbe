package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"versiond/transform"
)

const MediaTypeYAML = "application/yaml"

// YAML decodes mappings in document order. Anchors and aliases are
// resolved; tags other than the core schema are decoded as their scalars.
type YAML struct{}

func (YAML) MediaType() string { return MediaTypeYAML }

func (YAML) Decode(r io.Reader) (*transform.Payload, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return transform.NewPayload(), nil
		}
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return transform.NewPayload(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("codec: yaml document must be a mapping, line %d", root.Line)
	}
	return mappingToPayload(root)
}

func mappingToPayload(n *yaml.Node) (*transform.Payload, error) {
	p := transform.NewPayload()
	for i := 0; i+1 < len(n.Content); i += 2 {
		var key string
		if err := n.Content[i].Decode(&key); err != nil {
			return nil, err
		}
		v, err := nodeValue(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		p.Set(key, v)
	}
	return p, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		return mappingToPayload(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (YAML) Encode(w io.Writer, p *transform.Payload) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(payloadToNode(p)); err != nil {
		return err
	}
	return enc.Close()
}

func payloadToNode(p *transform.Payload) *yaml.Node {
	if p == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	p.Range(func(k string, v any) bool {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			valueToNode(v),
		)
		return true
	})
	return n
}

func valueToNode(v any) *yaml.Node {
	switch t := v.(type) {
	case *transform.Payload:
		return payloadToNode(t)
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range t {
			n.Content = append(n.Content, valueToNode(e))
		}
		return n
	default:
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
		}
		return &n
	}
}
