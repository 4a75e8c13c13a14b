package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/mipbench"
)

func main() {
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse([]string{})

	app := cli.NewApp()
	app.Name = "generator"
	app.Usage = "write random coloring or facility location instances"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "kind", Value: string(mipbench.KindColoring), Usage: "coloring or facilities"},
		cli.StringFlag{Name: "name", Value: "mipbench", Usage: "name prefix of the instances"},
		cli.GenericFlag{Name: "n", Value: &mipbench.ArrayIntFlags{}, Usage: "number of vertices or facilities, repeatable"},
		cli.GenericFlag{Name: "m", Value: &mipbench.ArrayIntFlags{}, Usage: "number of clients, repeatable (facilities only)"},
		cli.GenericFlag{Name: "density", Value: &mipbench.ArrayFloatFlags{}, Usage: "edge or eligibility probability, repeatable"},
		cli.IntFlag{Name: "count", Value: 10, Usage: "instances per combination"},
		cli.Int64Flag{Name: "seed", Usage: "random seed, 0 for the current time"},
		cli.StringFlag{Name: "out", Value: ".", Usage: "output directory"},
	}
	app.Action = func(c *cli.Context) error {
		g := generator{
			kind:    mipbench.Kind(c.String("kind")),
			name:    c.String("name"),
			sizes:   *c.Generic("n").(*mipbench.ArrayIntFlags),
			clients: *c.Generic("m").(*mipbench.ArrayIntFlags),
			density: *c.Generic("density").(*mipbench.ArrayFloatFlags),
			count:   c.Int("count"),
			out:     c.String("out"),
		}
		seed := c.Int64("seed")
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		glog.Infof("Generating %s instances with seed %d", g.kind, seed)
		files, err := g.run(rand.New(rand.NewSource(seed)))
		glog.Infof("Wrote %d instances", len(files))
		return err
	}
	if err := app.Run(os.Args); err != nil {
		glog.Errorf("generator: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

type generator struct {
	kind    mipbench.Kind
	name    string
	sizes   []int
	clients []int
	density []float64
	count   int
	out     string
}

func (g *generator) run(rng *rand.Rand) ([]string, error) {
	if len(g.sizes) == 0 || len(g.density) == 0 {
		return nil, errors.New("need at least one --n and one --density")
	}
	switch g.kind {
	case mipbench.KindColoring:
		g.clients = []int{0}
	case mipbench.KindFacilities:
		if len(g.clients) == 0 {
			return nil, errors.New("facilities need at least one --m")
		}
	default:
		return nil, errors.Errorf("unknown kind %q", g.kind)
	}
	if err := os.MkdirAll(g.out, 0755); err != nil {
		return nil, err
	}

	var files []string
	for l := 0; l < g.count; l++ {
		for _, n := range g.sizes {
			for _, m := range g.clients {
				for _, d := range g.density {
					file, err := g.write(rng, n, m, d, l)
					if err != nil {
						return files, err
					}
					files = append(files, file)
				}
			}
		}
	}
	return files, nil
}

func (g *generator) write(rng *rand.Rand, n, m int, density float64, l int) (string, error) {
	var name string
	if g.kind == mipbench.KindColoring {
		name = fmt.Sprintf("%s_%d_%.2f_%d.col", g.name, n, density, l)
	} else {
		name = fmt.Sprintf("%s_%d_%d_%.2f_%d.txt", g.name, n, m, density, l)
	}
	path := filepath.Join(g.out, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if g.kind == mipbench.KindColoring {
		err = mipbench.WriteColoringInstance(f, mipbench.GenerateColoring(rng, n, density))
	} else {
		err = mipbench.WriteFacilityInstance(f, mipbench.GenerateFacilities(rng, n, m, density))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return path, errors.Wrap(err, path)
}
