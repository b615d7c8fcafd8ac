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
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&summaryCmd{}, "reports")
	commander.Register(&ratiosCmd{}, "reports")
	commander.Register(&accountsCmd{}, "reports")
	commander.Register(&exportCmd{}, "reports")

	commander.Register(&importCmd{}, "data")
	commander.Register(&notifyCmd{}, "data")
	commander.Register(&authorizeCmd{}, "data")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
