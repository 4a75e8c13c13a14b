package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"git.solver4all.com/azaryc2s/mipbench"
)

func main() {
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse([]string{})

	app := mipbench.NewApp(mipbench.KindColoring)
	if err := app.Run(os.Args); err != nil {
		glog.Errorf("%s: %v", app.Name, err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
