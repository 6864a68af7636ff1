package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of builds to show" default:"20"`
	JSON  bool `help:"Print builds as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	store, err := eventstore.NewSQLiteStore(cfg.Daemon.Storage.EventsDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signalContext()
	defer cancel()
	builds, err := store.Builds(ctx, h.Limit)
	if err != nil {
		return err
	}
	return writeHistory(os.Stdout, builds, h.JSON)
}

func writeHistory(w io.Writer, builds []eventstore.BuildSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	if len(builds) == 0 {
		_, err := fmt.Fprintln(w, "no builds recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tTRIGGER\tOUTCOME\tDURATION\tPOSTS\tPAGES\tERROR")
	for _, b := range builds {
		dur := "-"
		if b.CompletedAt != nil {
			dur = b.Duration.Truncate(time.Millisecond).String()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			b.StartedAt.Local().Format(time.DateTime), shortID(b.BuildID), b.Trigger, b.Outcome,
			dur, b.Posts, b.Pages, b.Error)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
