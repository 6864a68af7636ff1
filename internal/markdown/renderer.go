// Package markdown renders post bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Options toggles the optional parts of the rendering pipeline.
type Options struct {
	HardWraps   bool
	Typographer bool
	Decorate    bool // wrap decorative emoji in styled spans
}

// DefaultOptions matches the blog's house style.
func DefaultOptions() Options {
	return Options{HardWraps: true, Typographer: true, Decorate: true}
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
	opts   Options
}

// NewRenderer builds a goldmark engine with GFM, auto heading IDs and raw HTML passthrough.
func NewRenderer(opts Options) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}

	rendererOptions := []goldmark.Option{
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()))
	} else {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	return &Renderer{engine: goldmark.New(rendererOptions...), opts: opts}
}

// Render converts a markdown body to post-processed HTML.
func (r *Renderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return PostProcess(buf.String(), r.opts.Decorate), nil
}

var (
	leftoverImageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	leftoverLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Decorative emoji and the span class each one receives.
var decorations = []struct {
	emoji string
	class string
}{
	{"✨", "sparkle"},
	{"🌸", "flower"},
	{"💕", "heart"},
	{"😅", "sweat"},
	{"🌈", "rainbow"},
	{"🐣", "chick"},
	{"🌟", "star"},
	{"💖", "heart2"},
	{"💬", "speech"},
	{"🔖", "bookmark"},
	{"🏷️", "tag"},
}

var decorator = func() *strings.Replacer {
	pairs := make([]string, 0, len(decorations)*2)
	for _, d := range decorations {
		pairs = append(pairs, d.emoji, `<span class="`+d.class+`">`+d.emoji+`</span>`)
	}
	return strings.NewReplacer(pairs...)
}()

// PostProcess turns markdown image and link syntax the parser left as text
// into elements and, when decorate is set, wraps decorative emoji in spans.
func PostProcess(rendered string, decorate bool) string {
	out := leftoverImageRe.ReplaceAllString(rendered, `<img src="$2" alt="$1" loading="lazy">`)
	out = leftoverLinkRe.ReplaceAllString(out, `<a href="$2">$1</a>`)
	if decorate {
		out = decorator.Replace(out)
	}
	return out
}
