package frontmatter

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Compose renders fields as a YAML block followed by body. Keys are sorted so
// the output is stable. Empty fields produce the body unchanged.
func Compose(fields Fields, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	node, err := mappingNode(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	buf.WriteString("---\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

func mappingNode(m map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		v := m[k]
		var val *yaml.Node
		if nested, ok := v.(map[string]any); ok {
			var err error
			if val, err = mappingNode(nested); err != nil {
				return nil, err
			}
		} else {
			val = &yaml.Node{}
			if err := val.Encode(v); err != nil {
				return nil, fmt.Errorf("encode %q: %w", k, err)
			}
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, val)
	}
	return n, nil
}
