package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/mipbench"
)

func main() {
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse([]string{})

	app := cli.NewApp()
	app.Name = "formatter"
	app.Usage = "re-indent JSON batch reports in place, keeping number arrays on one line"
	app.ArgsUsage = "<files...>"
	app.HideVersion = true
	app.Action = func(c *cli.Context) error {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no files given")
		}
		failed := 0
		for _, file := range c.Args() {
			if err := formatFile(file); err != nil {
				glog.Errorf("At %s: %v", file, err)
				failed++
			}
		}
		if failed > 0 {
			return errors.Errorf("%d of %d files failed", failed, c.NArg())
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		glog.Errorf("formatter: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

func formatFile(fileName string) error {
	content, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return errors.Wrap(err, "not JSON")
	}
	out := mipbench.SanitizeJsonArrayLineBreaks(buf.String()) + "\n"
	return os.WriteFile(fileName, []byte(out), 0644)
}
