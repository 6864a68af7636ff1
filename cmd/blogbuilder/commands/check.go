package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/linkverify"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Dir string `short:"d" help:"Site directory to check (defaults to output.directory)" type:"path"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	dir := cfg.Output.Directory
	if c.Dir != "" {
		dir = c.Dir
	}
	ctx, cancel := signalContext()
	defer cancel()
	rep, err := linkverify.NewChecker(dir, g.Logger).Check(ctx)
	if err != nil {
		return err
	}
	for _, b := range rep.Broken {
		fmt.Printf("%s: <%s> %s\n", b.Source, b.Tag, b.URL)
	}
	fmt.Printf("checked %d pages, %d links, %d broken\n", rep.Pages, rep.Links, len(rep.Broken))
	if !rep.OK() {
		return errors.ValidationError(fmt.Sprintf("%d broken internal links", len(rep.Broken))).
			WithContext("dir", dir).Build()
	}
	return nil
}
