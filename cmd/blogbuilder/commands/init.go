package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite an existing configuration file"`
	Dir   string `short:"d" help:"Write blogbuilder.yaml into this directory instead of --config" type:"path"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	path := root.Config
	if i.Dir != "" {
		path = filepath.Join(i.Dir, DefaultConfigPath)
	}
	fmt.Printf("Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	fmt.Println("Initialized. Run 'blogbuilder build' next.")
	return nil
}
