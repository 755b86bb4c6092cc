// Command pt is a paper trading terminal: a watch-list of market quotes, AI
// analysis and news, and a virtual cash account to trade with.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/papertrade/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	completion(commander).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion. Complete only
// acts when invoked by the shell completion machinery.
func completion(commander *subcommands.Commander) *complete.Command {
	global := map[string]complete.Predictor{
		"config": predict.Files("*.toml"),
	}
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: global,
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		fs.VisitAll(func(f *flag.Flag) {
			sub.Flags[f.Name] = predict.Nothing
		})
		root.Sub[c.Name()] = sub
	})
	return root
}
