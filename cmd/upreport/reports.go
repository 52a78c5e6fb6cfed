package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"upreport/internal/core"
	"upreport/internal/services"

	"github.com/google/subcommands"
)

// reportFlags are shared by the report commands.
type reportFlags struct {
	window windowFlags
	print  bool
}

func (r *reportFlags) register(f *flag.FlagSet) {
	r.window.register(f)
	f.BoolVar(&r.print, "print", false, "also print the report on the terminal")
}

// runReport executes one report and maps its outcome to an exit status.
func runReport(ctx context.Context, flags *reportFlags, build func(w core.Window) services.Request) subcommands.ExitStatus {
	err := withService(ctx, func(ctx context.Context, a *app, svc *services.ReportService) error {
		w, err := flags.window.resolve(time.Now(), a.cfg)
		if err != nil {
			return err
		}
		res, err := svc.Run(ctx, build(w))
		if res.Run.ID != "" {
			report(res)
		}
		if flags.print && len(res.Workbook.Sheets) > 0 {
			printWorkbook(res.Workbook)
		}
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type untaggedCmd struct{ flags reportFlags }

func (*untaggedCmd) Name() string     { return "untagged" }
func (*untaggedCmd) Synopsis() string { return "list withdrawals without a tag" }
func (*untaggedCmd) Usage() string {
	return `upreport untagged [-lookback 4w | -from YYYY-MM-DD [-to YYYY-MM-DD]] [-print]

  Lists every withdrawal of the window that carries no tag.
`
}

func (c *untaggedCmd) SetFlags(f *flag.FlagSet) { c.flags.register(f) }

func (c *untaggedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.flags, func(w core.Window) services.Request {
		return services.Request{Kind: core.ReportUntagged, Window: w}
	})
}

type tagsCmd struct {
	flags reportFlags
	tags  string
	exact bool
}

func (*tagsCmd) Name() string     { return "tags" }
func (*tagsCmd) Synopsis() string { return "summarise spend per tag" }
func (*tagsCmd) Usage() string {
	return `upreport tags [-tags a,b] [-exact] [-lookback 4w | -from YYYY-MM-DD [-to YYYY-MM-DD]] [-print]

  Summarises spend per tag with weekly and monthly rates, and writes one
  sheet per tag. Without -tags every tag is reported.
`
}

func (c *tagsCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
	f.StringVar(&c.tags, "tags", "", "comma separated tags to report")
	f.BoolVar(&c.exact, "exact", false, "match whole tags instead of substrings")
}

func (c *tagsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.flags, func(w core.Window) services.Request {
		return services.Request{Kind: core.ReportTags, Window: w, Tags: splitList(c.tags), ExactTags: c.exact}
	})
}

type budgetCmd struct {
	flags  reportFlags
	budget string
}

func (*budgetCmd) Name() string     { return "budget" }
func (*budgetCmd) Synopsis() string { return "compare spend per tag with the budget" }
func (*budgetCmd) Usage() string {
	return `upreport budget [-budget file] [-lookback 4w | -from YYYY-MM-DD [-to YYYY-MM-DD]] [-print]

  Compares the spend per tag with the budget file (CSV or JSON), scaled to
  the report window, and flags tags outside the variance band.
`
}

func (c *budgetCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
	f.StringVar(&c.budget, "budget", "", "budget file (defaults to BUDGET_FILE)")
}

func (c *budgetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.flags, func(w core.Window) services.Request {
		return services.Request{Kind: core.ReportBudget, Window: w, BudgetFile: c.budget}
	})
}

type batchCmd struct {
	flags   reportFlags
	reports string
	budget  string
}

func (*batchCmd) Name() string     { return "batch" }
func (*batchCmd) Synopsis() string { return "run several reports over the same window" }
func (*batchCmd) Usage() string {
	return `upreport batch [-reports untagged,tags,budget] [-budget file] [-lookback 4w | -from YYYY-MM-DD [-to YYYY-MM-DD]]

  Runs the listed reports one after the other. A failing report does not
  stop the others; the exit status is non-zero if any failed.
`
}

func (c *batchCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
	f.StringVar(&c.reports, "reports", "untagged,tags,budget", "comma separated reports to run")
	f.StringVar(&c.budget, "budget", "", "budget file (defaults to BUDGET_FILE)")
}

func (c *batchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var kinds []core.ReportKind
	for _, name := range splitList(c.reports) {
		kind, ok := core.ParseReportKind(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown report %q\n", name)
			return subcommands.ExitUsageError
		}
		kinds = append(kinds, kind)
	}

	err := withService(ctx, func(ctx context.Context, a *app, svc *services.ReportService) error {
		w, err := c.flags.window.resolve(time.Now(), a.cfg)
		if err != nil {
			return err
		}
		reqs := make([]services.Request, 0, len(kinds))
		for _, kind := range kinds {
			reqs = append(reqs, services.Request{Kind: kind, Window: w, BudgetFile: c.budget})
		}

		result := svc.RunBatch(ctx, reqs)
		for _, item := range result.Items {
			if item.Result.Run.ID != "" {
				report(item.Result)
			}
			if item.Err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", item.Request.Kind, item.Err)
			}
			if c.flags.print && len(item.Result.Workbook.Sheets) > 0 {
				printWorkbook(item.Result.Workbook)
			}
		}
		return result.Err()
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
