package frontmatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAML(t *testing.T) {
	src := "---\ntitle: Pastel Desk\ntags:\n  - decor\n  - desk\nkeywords: cute, pastel , ,desk\nmeta-description: A tour\n---\n# Hello\n\nBody text\n"

	fields, body, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n\nBody text", strings.TrimSpace(string(body)))

	title, ok := fields.String("title")
	require.True(t, ok)
	assert.Equal(t, "Pastel Desk", title)

	tags, ok := fields.List("tags")
	require.True(t, ok)
	assert.Equal(t, []string{"decor", "desk"}, tags)

	kw, ok := fields.List("keywords")
	require.True(t, ok)
	assert.Equal(t, []string{"cute", "pastel", "desk"}, kw)

	meta, ok := fields.First("metaDescription", "meta-description", "description")
	require.True(t, ok)
	assert.Equal(t, "A tour", meta)
}

func TestParseTOML(t *testing.T) {
	src := "+++\ntitle = \"Toml Title\"\n+++\nbody"
	fields, body, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "body", strings.TrimSpace(string(body)))
	title, _ := fields.String("title")
	assert.Equal(t, "Toml Title", title)
}

func TestParseWithoutBlock(t *testing.T) {
	fields, body, err := Parse([]byte("just markdown"))
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, "just markdown", string(body))

	_, ok := fields.String("title")
	assert.False(t, ok)
	_, ok = fields.List("keywords")
	assert.False(t, ok)
}

func TestEmptyScalarIsMissing(t *testing.T) {
	f := Fields{"title": "", "count": 3}
	_, ok := f.String("title")
	assert.False(t, ok)
	n, ok := f.String("count")
	require.True(t, ok)
	assert.Equal(t, "3", n)
}
