package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"ledgerview/internal/amqp"
)

type notifyCmd struct {
	source string
}

func (*notifyCmd) Name() string     { return "notify" }
func (*notifyCmd) Synopsis() string { return "tell running dashboards to reload their data" }
func (*notifyCmd) Usage() string {
	return `ledgerctl notify [-s <source>]

  Publishes a refresh message on AMQP_URL. Every dashboard consuming the
  queue drops its snapshot and reloads on the next request.
`
}

func (c *notifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "s", "ledgerctl", "Name of the sender, recorded in the message")
}

func (c *notifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !cfg.AMQPEnabled() {
		fmt.Fprintln(os.Stderr, "Error: AMQP_URL is not set")
		return subcommands.ExitUsageError
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to AMQP: %v\n", err)
		return subcommands.ExitFailure
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.PublishRefresh(ctx, c.source); err != nil {
		fmt.Fprintf(os.Stderr, "Error publishing refresh: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Info("Refresh published", "exchange", cfg.AMQPExchange, "source", c.source)
	return subcommands.ExitSuccess
}
