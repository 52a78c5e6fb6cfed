// Command upreport builds spending reports from exported bank transactions.
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

	commander.Register(&importCmd{}, "data")
	commander.Register(&runsCmd{}, "data")

	commander.Register(&untaggedCmd{}, "reports")
	commander.Register(&tagsCmd{}, "reports")
	commander.Register(&budgetCmd{}, "reports")
	commander.Register(&batchCmd{}, "reports")
	commander.Register(&requestCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
