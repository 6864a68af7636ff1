package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	JSON     bool `help:"Print posts as JSON"`
	Excluded bool `help:"Also show posts dropped for empty or duplicate slugs"`
}

// postRow is the listing view of a post.
type postRow struct {
	Slug     string   `json:"slug"`
	Date     string   `json:"date"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	URL      string   `json:"url"`
	Excluded bool     `json:"excluded,omitempty"`
}

func (c *ListCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	coll, err := loadContent(ctx, cfg, g.Logger)
	if err != nil {
		return err
	}
	return writePosts(os.Stdout, coll, c.JSON, c.Excluded)
}

func writePosts(w io.Writer, coll *content.Collection, asJSON, withExcluded bool) error {
	rows := make([]postRow, 0, coll.Len())
	for _, p := range coll.Posts() {
		rows = append(rows, postRow{Slug: p.Slug, Date: p.Date, Title: p.Title, Tags: p.Tags, URL: p.URL})
	}
	if withExcluded {
		for _, p := range coll.Excluded() {
			rows = append(rows, postRow{Slug: p.Slug, Date: p.Date, Title: p.Title, Tags: p.Tags, URL: p.URL, Excluded: true})
		}
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SLUG\tDATE\tTITLE\tTAGS")
	for _, r := range rows {
		slug := r.Slug
		if r.Excluded {
			slug = "(excluded) " + slug
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", slug, r.Date, r.Title, strings.Join(r.Tags, ", "))
	}
	return tw.Flush()
}
