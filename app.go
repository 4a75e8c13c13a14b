package mipbench

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

var appUsage = map[Kind]string{
	KindColoring:   "minimum graph coloring of DIMACS edge files",
	KindFacilities: "capacitated facility location with sparse eligibility",
}

// NewApp builds the command line program solving instances of kind. Flags
// may come before, between or after the glob patterns. The returned error
// of Run is what the program should exit 1 on.
func NewApp(kind Kind) *cli.App {
	app := cli.NewApp()
	app.Name = string(kind)
	app.Usage = appUsage[kind]
	app.ArgsUsage = "<glob-patterns...>"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:   "time-limit",
			Usage:  "time limit per instance in seconds, 0 for none",
			EnvVar: "MIPBENCH_TIME_LIMIT",
		},
		cli.Float64Flag{
			Name:   "mip-gap",
			Usage:  "relative MIP gap, 0 for the backend default",
			EnvVar: "MIPBENCH_MIP_GAP",
		},
		cli.BoolFlag{
			Name:  "print-model",
			Usage: "export every model as <name>.lp",
		},
		cli.StringFlag{
			Name:   "backend",
			Value:  DefaultBackend,
			Usage:  "solver backend, one of " + strings.Join(mip.Backends(), ", "),
			EnvVar: "MIPBENCH_BACKEND",
		},
		cli.StringFlag{
			Name:  "output-dir",
			Value: ".",
			Usage: "directory for solution and model files",
		},
		cli.GenericFlag{
			Name:  "param",
			Value: &ParamFlags{},
			Usage: "backend option `KEY=VALUE`, repeatable",
		},
		cli.StringFlag{
			Name:  "report",
			Usage: "write a JSON batch report to `FILE`",
		},
		cli.IntFlag{
			Name:  "v",
			Usage: "log verbosity",
		},
	}
	app.Action = func(c *cli.Context) error {
		return runApp(c, kind)
	}
	return app
}

// flagValues reads a flag from the flags given after the first pattern if
// it was set there, else from the ones before it.
type flagValues struct {
	lead  *cli.Context
	trail *cli.Context
	seen  map[string]bool
}

func (f flagValues) get(name string) *cli.Context {
	if f.seen[name] {
		return f.trail
	}
	return f.lead
}

// splitArgs separates the glob patterns from flags mixed in between or after
// them. urfave/cli stops parsing flags at the first positional argument.
func splitArgs(c *cli.Context) (flagValues, []string, error) {
	fv := flagValues{lead: c}
	args := c.Args()
	set := flag.NewFlagSet(c.App.Name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	for _, f := range c.App.Flags {
		f.Apply(set)
	}
	var patterns []string
	for len(args) > 0 {
		if err := set.Parse(args); err != nil {
			return fv, nil, errors.Wrap(err, "parsing flags after the patterns")
		}
		args = set.Args()
		if len(args) > 0 {
			patterns = append(patterns, args[0])
			args = args[1:]
		}
	}
	fv.trail = cli.NewContext(c.App, set, nil)
	fv.seen = make(map[string]bool)
	set.Visit(func(f *flag.Flag) { fv.seen[f.Name] = true })
	return fv, patterns, nil
}

func configFromFlags(f flagValues) Config {
	cfg := DefaultConfig()
	cfg.TimeLimit = time.Duration(f.get("time-limit").Int("time-limit")) * time.Second
	cfg.MIPGap = f.get("mip-gap").Float64("mip-gap")
	cfg.PrintModel = f.get("print-model").Bool("print-model")
	cfg.Backend = f.get("backend").String("backend")
	cfg.OutputDir = f.get("output-dir").String("output-dir")
	cfg.Report = f.get("report").String("report")
	// Both flag sets share the ParamFlags value.
	if p, ok := f.lead.Generic("param").(*ParamFlags); ok && p != nil && len(*p) > 0 {
		cfg.Options = *p
	}
	return cfg
}

func runApp(c *cli.Context, kind Kind) error {
	fv, patterns, err := splitArgs(c)
	if err != nil {
		return err
	}
	if v := fv.get("v"); v.IsSet("v") {
		flag.Set("v", strconv.Itoa(v.Int("v")))
	}
	cfg := configFromFlags(fv)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(patterns) == 0 {
		cli.ShowAppHelp(c)
		return errors.New("no glob patterns given")
	}
	files := ExpandPatterns(patterns)
	if len(files) == 0 {
		return errors.Errorf("no files match %s", strings.Join(patterns, " "))
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return &OutputError{Path: cfg.OutputDir, Err: err}
	}

	solver, err := cfg.NewSolver()
	if err != nil {
		return err
	}
	sys := GetSysInfo()
	glog.Infof("%s: %d files, backend %s, time limit %v, gap %g, on %s",
		kind, len(files), solver.Name(), cfg.TimeLimit, cfg.MIPGap, sys)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &Runner{Kind: kind, Config: cfg, Solver: solver, System: sys}
	report, err := runner.Run(ctx, files)
	if cfg.Report != "" && report != nil {
		if rerr := SaveReport(cfg.Report, report); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err != nil {
		return err
	}
	glog.Infof("%s", summary(report))
	return nil
}

func summary(r *BatchReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Done: %d files in %v", r.Files, r.Elapsed.Round(time.Millisecond))
	for st := mip.StatusUnknown; st <= mip.StatusError; st++ {
		if n := r.Statuses[st]; n > 0 {
			fmt.Fprintf(&sb, ", %d %s", n, st)
		}
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(&sb, ", %d failed", len(r.Failures))
	}
	if r.Cancelled {
		sb.WriteString(", interrupted")
	}
	return sb.String()
}
