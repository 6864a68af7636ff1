package commands

import (
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/state"
	"git.home.luguber.info/inful/blogbuilder/internal/templates"
)

// GenerateCmd implements the 'generate' command: one template, one file per
// post, skipping posts that did not change since the last run.
type GenerateCmd struct {
	Force    bool   `short:"f" help:"Regenerate every post"`
	Template string `help:"Override legacy.template" type:"path"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if c.Template != "" {
		cfg.Legacy.Template = c.Template
	}

	ctx, cancel := signalContext()
	defer cancel()
	coll, err := loadContent(ctx, cfg, g.Logger)
	if err != nil {
		return err
	}

	gen := &templates.Generator{
		TemplatePath: cfg.Legacy.Template,
		OutputDir:    cfg.Legacy.OutputDir,
		ManifestPath: cfg.Legacy.Manifest,
		SiteName:     cfg.Site.Name,
		State:        state.NewStore(cfg.Legacy.LastRunFile, g.Logger),
		Force:        c.Force,
		Logger:       g.Logger,
	}
	res, err := gen.Run(ctx, coll)
	if err != nil {
		return err
	}
	fmt.Printf("generated %d, skipped %d, manifest %s\n", len(res.Generated), len(res.Skipped), cfg.Legacy.Manifest)
	return nil
}
