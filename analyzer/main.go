package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/mipbench"
)

func main() {
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse([]string{})

	app := cli.NewApp()
	app.Name = "analyzer"
	app.Usage = "summarize the sol_*.txt files of a directory as CSV"
	app.ArgsUsage = "<dir>"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "check",
			Usage: "re-read every instance and verify the solution against it",
		},
	}
	app.Action = func(c *cli.Context) error {
		if c.NArg() != 1 {
			cli.ShowAppHelp(c)
			return errors.New("expected exactly one directory")
		}
		return analyze(os.Stdout, c.Args().First(), c.Bool("check"))
	}
	if err := app.Run(os.Args); err != nil {
		glog.Errorf("analyzer: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func analyze(w io.Writer, dir string, check bool) error {
	files, err := filepath.Glob(filepath.Join(dir, "sol_*.txt"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no solution files in %s", dir)
	}
	sort.Strings(files)

	fmt.Fprintln(w, "Name,Kind,Status,Objective,Colors,Open,Assigned,Comment")
	for _, file := range files {
		sol, err := mipbench.ReadSolutionFile(file)
		if err != nil {
			glog.Warningf("Skipping %s: %v", file, err)
			continue
		}
		var comment string
		if check {
			if err := mipbench.CheckSolution(sol); err != nil {
				comment = "ANALYZER: " + strings.ReplaceAll(err.Error(), ",", ";")
			}
		}
		fmt.Fprintf(w, "%s,%s,%s,%.6f,%d,%d,%d,%s\n", sol.Instance, sol.Kind, sol.Status,
			sol.Objective, sol.NumColors, len(sol.Open), assigned(sol), comment)
	}
	return nil
}

func assigned(sol *mipbench.Solution) int {
	if sol.Kind == mipbench.KindColoring {
		return len(sol.Coloring)
	}
	return len(sol.Assignments)
}
