package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"upreport/internal/storage"

	"github.com/google/subcommands"
)

type runsCmd struct {
	limit int
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "show the report run history" }
func (*runsCmd) Usage() string {
	return `upreport runs [-n 20]

  Lists the most recent report runs recorded in the SQLite database.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "number of runs to show")
}

func (c *runsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	runs, err := repo.ListRuns(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	loc := a.cfg.Location()
	var b strings.Builder
	b.WriteString("# Report runs\n\n")
	b.WriteString("| generated | report | status | window | malformed | output |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s |\n",
			r.GeneratedAt.In(loc).Format(time.DateTime),
			r.Kind, r.Status,
			r.Window.Start.In(loc).Format(dateLayout)+" to "+r.Window.End.In(loc).Format(dateLayout),
			r.Malformed,
			strings.ReplaceAll(r.OutputRef, "|", `\|`))
	}
	if len(runs) == 0 {
		b.WriteString("\n_no runs recorded_\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
