package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"

	"dividend_backend/internal/app/di"
	"dividend_backend/internal/feature/holdings/adapters"
	projectionusecase "dividend_backend/internal/feature/projection/usecase"
	"dividend_backend/internal/platform/config"
	"dividend_backend/internal/platform/logging"
	"dividend_backend/internal/shared/calendar"
)

var stdout io.Writer = os.Stdout

// setup loads the configuration, installs the logger and builds the application.
func setup(ctx context.Context, force bool) (*di.App, config.Config, error) {
	cfg := config.Load()
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat))
	if force {
		cfg.CacheBypass = true
	}
	app, err := di.NewApp(ctx, cfg)
	return app, cfg, err
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

type runCmd struct {
	portfolio string
	save      bool
	force     bool
	months    int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "fetch market data and compute metrics and projection" }
func (*runCmd) Usage() string {
	return `refresh run [-portfolio <file>] [-save] [-force] [-months n]

  Loads the holdings file, fetches prices and dividend histories (through the
  cache), computes position metrics, the snapshot and the dividend projection,
  and prints them as JSON. With -save the snapshot is stored in the history.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Holdings CSV file (defaults to PORTFOLIO_FILE)")
	f.BoolVar(&c.save, "save", false, "Store today's snapshot in the history")
	f.BoolVar(&c.force, "force", false, "Ignore cached market data")
	f.IntVar(&c.months, "months", 0, "Projection horizon in months (defaults to PROJECTION_MONTHS)")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, cfg, err := setup(ctx, c.force)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	file := c.portfolio
	if file == "" {
		file = cfg.PortfolioFile
	}

	res, err := app.Refresh.RunFile(ctx, file, projectionusecase.RefreshOptions{Save: c.save, Months: c.months})
	if err != nil && res.Positions == nil {
		return fail(err)
	}
	if werr := writeJSON(res); werr != nil {
		return fail(werr)
	}
	if err != nil {
		// the result was computed but the snapshot was not stored
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type compareCmd struct {
	force  bool
	months int
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare several holdings files side by side" }
func (*compareCmd) Usage() string {
	return `refresh compare [-force] [-months n] <file> <file>...

  Computes value, annual dividend, yield and average monthly income for each
  holdings file. Market data is fetched once for the union of tickers.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "Ignore cached market data")
	f.IntVar(&c.months, "months", 0, "Projection horizon in months (defaults to PROJECTION_MONTHS)")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	files := splitFiles(f.Args())
	if len(files) < 2 {
		fmt.Fprintln(os.Stderr, "compare needs at least two holdings files")
		return subcommands.ExitUsageError
	}

	app, _, err := setup(ctx, c.force)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	loader := adapters.NewCSVLoader()
	portfolios := make([]projectionusecase.NamedHoldings, 0, len(files))
	for _, file := range files {
		hs, err := loader.LoadFile(file)
		if err != nil {
			return fail(err)
		}
		portfolios = append(portfolios, projectionusecase.NamedHoldings{Name: file, Holdings: hs})
	}

	summaries, err := app.Refresh.Compare(ctx, portfolios, c.months)
	if err != nil {
		return fail(err)
	}
	if err := writeJSON(summaries); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// splitFiles accepts both "a.csv b.csv" and "a.csv,b.csv".
func splitFiles(args []string) []string {
	var out []string
	for _, a := range args {
		for _, p := range strings.Split(a, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

type historyCmd struct {
	from, to string
	summary  bool
	dates    bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list stored snapshots" }
func (*historyCmd) Usage() string {
	return `refresh history [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-summary | -dates]

  Prints stored snapshots in ascending date order. Records that cannot be read
  are reported as gaps. With -summary only the count and date range are shown,
  with -dates only the stored dates.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First date (inclusive)")
	f.StringVar(&c.to, "to", "", "Last date (inclusive)")
	f.BoolVar(&c.summary, "summary", false, "Only print count, first and last date")
	f.BoolVar(&c.dates, "dates", false, "Only print the stored dates")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.summary && c.dates {
		fmt.Fprintln(os.Stderr, "Error: -summary and -dates are mutually exclusive")
		return subcommands.ExitUsageError
	}
	from, err := optionalDate(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -from: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := optionalDate(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -to: %v\n", err)
		return subcommands.ExitUsageError
	}

	app, _, err := setup(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	var out any
	switch {
	case c.summary:
		out, err = app.History.Summary(ctx)
	case c.dates:
		out, err = app.History.Dates(ctx)
	default:
		out, err = app.History.List(ctx, from, to)
	}
	if err != nil {
		return fail(err)
	}
	if err := writeJSON(out); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func optionalDate(s string) (calendar.Date, error) {
	if s == "" {
		return calendar.Date{}, nil
	}
	return calendar.Parse(s)
}

type trendCmd struct {
	days int
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "show value and dividend trend over recent snapshots" }
func (*trendCmd) Usage() string {
	return `refresh trend [-days n]

  Compares adjacent snapshots within the last n days and the first against the
  last. Fewer than two snapshots report insufficient_history.
`
}

func (c *trendCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 0, "Window in days (defaults to TREND_DAYS)")
}

func (c *trendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.days < 0 {
		fmt.Fprintln(os.Stderr, "Error: -days must not be negative")
		return subcommands.ExitUsageError
	}

	app, cfg, err := setup(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	days := c.days
	if days == 0 {
		days = cfg.TrendDays
	}
	res, err := app.Trend.Analyze(ctx, days)
	if err != nil {
		return fail(err)
	}
	if err := writeJSON(res); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
