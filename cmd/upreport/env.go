package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"upreport/internal/cli"
	"upreport/internal/config"
	"upreport/internal/core"
	"upreport/internal/log"
	"upreport/internal/services"
	"upreport/internal/sheets/markdown"

	"github.com/charmbracelet/glamour"
)

const dateLayout = "2006-01-02"

// app carries what every command needs once the environment is loaded.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

func setup() (*app, error) {
	if err := cli.LoadEnvFile(); err != nil {
		return nil, err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: cli.SetupLogger(cfg, log.ComponentCLI)}, nil
}

// windowFlags selects the report window: a lookback ending now, or
// explicit dates. A date-only end covers the whole day.
type windowFlags struct {
	lookback string
	from     string
	to       string
}

func (w *windowFlags) register(f *flag.FlagSet) {
	f.StringVar(&w.lookback, "lookback", "", "window ending now, e.g. 6w, 30d, 3m (defaults to REPORT_LOOKBACK)")
	f.StringVar(&w.from, "from", "", "window start date (YYYY-MM-DD)")
	f.StringVar(&w.to, "to", "", "window end date (YYYY-MM-DD), inclusive")
}

func (w *windowFlags) resolve(now time.Time, cfg *config.Config) (core.Window, error) {
	loc := cfg.Location()
	if w.from == "" && w.to == "" {
		lookback := w.lookback
		if lookback == "" {
			lookback = cfg.Lookback
		}
		return core.Lookback(lookback, now.In(loc))
	}
	if w.lookback != "" {
		return core.Window{}, fmt.Errorf("-lookback cannot be combined with -from/-to")
	}

	end := now.In(loc)
	if w.to != "" {
		d, err := time.ParseInLocation(dateLayout, w.to, loc)
		if err != nil {
			return core.Window{}, fmt.Errorf("invalid -to date: %w", err)
		}
		end = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if w.from == "" {
		return core.Window{}, fmt.Errorf("-from is required with -to")
	}
	start, err := time.ParseInLocation(dateLayout, w.from, loc)
	if err != nil {
		return core.Window{}, fmt.Errorf("invalid -from date: %w", err)
	}
	return core.NewWindow(start, end)
}

// printWorkbook renders the workbook as markdown on the terminal.
func printWorkbook(wb core.Workbook) {
	printMarkdown(markdown.Render(wb))
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func report(res services.Result) {
	fmt.Fprintf(os.Stderr, "%s run %s: %s", res.Run.Kind, res.Run.ID, res.Run.Status)
	if res.Run.OutputRef != "" {
		fmt.Fprintf(os.Stderr, " -> %s", res.Run.OutputRef)
	}
	if res.Run.Malformed > 0 {
		fmt.Fprintf(os.Stderr, " (%d malformed records skipped)", res.Run.Malformed)
	}
	fmt.Fprintln(os.Stderr)
}

// withService runs fn with a report service built from the environment.
func withService(ctx context.Context, fn func(ctx context.Context, a *app, svc *services.ReportService) error) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := cli.SignalContext(ctx)
	defer stop()

	svc, cleanup, err := cli.NewReportService(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, a, svc)
}
