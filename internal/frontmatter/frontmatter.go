// Package frontmatter splits a metadata block from the top of a markdown document.
//
// YAML (---), TOML (+++) and JSON (;;;) blocks are recognised. Documents
// without a block are returned unchanged with empty Fields.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// Fields is the decoded metadata block.
type Fields map[string]any

// Parse extracts the metadata block from source and returns the remaining body.
func Parse(source []byte) (Fields, []byte, error) {
	fields := Fields{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &fields)
	if err != nil {
		return nil, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return fields, body, nil
}

// String returns a non-empty scalar value for key.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	s := scalar(v)
	if s == "" {
		return "", false
	}
	return s, true
}

// First returns the first key that holds a non-empty scalar.
func (f Fields) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := f.String(k); ok {
			return s, true
		}
	}
	return "", false
}

// List returns key as a list of trimmed, non-empty strings. A scalar string
// is split on commas.
func (f Fields) List(key string) ([]string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	var out []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := strings.TrimSpace(scalar(item)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		for _, part := range strings.Split(scalar(val), ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out, true
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02")
	case []any, map[string]any, map[any]any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
