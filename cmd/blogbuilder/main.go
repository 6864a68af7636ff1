package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/cmd/blogbuilder/commands"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string) int {
	cli := &commands.CLI{}
	global := &commands.Global{}
	parser, err := kong.New(cli,
		kong.Name("blogbuilder"),
		kong.Description("Static blog generator for CSV-authored posts."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, nil).Report(errors.InternalError("build CLI parser").WithCause(err).Build())
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
	return adapter.Report(ctx.Run(global, cli))
}
