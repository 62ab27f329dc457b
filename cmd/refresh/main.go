// Command refresh runs one portfolio refresh from the command line and
// queries the stored snapshot history.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&runCmd{}, "portfolio")
	commander.Register(&compareCmd{}, "portfolio")
	commander.Register(&historyCmd{}, "history")
	commander.Register(&trendCmd{}, "history")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
