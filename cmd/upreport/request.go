package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"upreport/internal/amqp"
	"upreport/internal/core"

	"github.com/google/subcommands"
)

type requestCmd struct {
	report string
	window windowFlags
	tags   string
	exact  bool
	budget string
}

func (*requestCmd) Name() string     { return "request" }
func (*requestCmd) Synopsis() string { return "queue a report for the report worker" }
func (*requestCmd) Usage() string {
	return `upreport request -report untagged|tags|budget [-lookback 4w | -from YYYY-MM-DD [-to YYYY-MM-DD]] [-tags a,b] [-exact] [-budget file]

  Publishes a report request on AMQP_QUEUE. A lookback is resolved by the
  worker when it runs the report.
`
}

func (c *requestCmd) SetFlags(f *flag.FlagSet) {
	c.window.register(f)
	f.StringVar(&c.report, "report", "", "report to run: untagged, tags or budget")
	f.StringVar(&c.tags, "tags", "", "comma separated tags (tags report)")
	f.BoolVar(&c.exact, "exact", false, "match whole tags instead of substrings")
	f.StringVar(&c.budget, "budget", "", "budget file as seen by the worker")
}

func (c *requestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, ok := core.ParseReportKind(c.report)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown report %q\n", c.report)
		return subcommands.ExitUsageError
	}
	if err := c.publish(ctx, kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *requestCmd) publish(ctx context.Context, kind core.ReportKind) error {
	a, err := setup()
	if err != nil {
		return err
	}
	if a.cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required to queue reports")
	}

	msg, err := c.message(kind, time.Now(), a)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.cfg.AMQPEventsQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.PublishReportRequest(ctx, msg); err != nil {
		return err
	}
	fmt.Printf("queued %s report, request %s\n", kind, msg.RequestID)
	return nil
}

// message keeps a lookback relative so the worker resolves it; dates are
// resolved here in the report timezone.
func (c *requestCmd) message(kind core.ReportKind, now time.Time, a *app) (*amqp.ReportRequest, error) {
	msg := amqp.NewReportRequest(kind, "")
	msg.Tags = splitList(c.tags)
	msg.ExactTags = c.exact
	msg.BudgetFile = c.budget

	if c.window.from == "" && c.window.to == "" {
		msg.Lookback = c.window.lookback
		if msg.Lookback == "" {
			msg.Lookback = a.cfg.Lookback
		}
		return msg, msg.Validate()
	}
	w, err := c.window.resolve(now, a.cfg)
	if err != nil {
		return nil, err
	}
	msg.Start, msg.End = &w.Start, &w.End
	return msg, msg.Validate()
}
