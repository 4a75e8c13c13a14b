package mipbench

import (
	"time"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
	"git.solver4all.com/azaryc2s/mipbench/mip/bnb"
)

// DefaultBackend is the solver used when none is configured.
const DefaultBackend = bnb.Name

// Config holds the settings shared by the coloring and facilities programs.
type Config struct {
	// TimeLimit bounds each solve; zero means no limit.
	TimeLimit time.Duration
	// MIPGap is the relative optimality gap; zero keeps the backend default.
	MIPGap float64
	// PrintModel exports every model as <name>.lp before solving.
	PrintModel bool
	Backend    string
	// OutputDir receives solution, model and report files.
	OutputDir string
	// Options are passed to the backend untouched.
	Options map[string]string
	// Report, if set, is the file the JSON batch report is written to.
	Report string
}

// DefaultConfig returns the configuration of a plain invocation.
func DefaultConfig() Config {
	return Config{Backend: DefaultBackend, OutputDir: "."}
}

// Validate rejects settings no backend can use.
func (c Config) Validate() error {
	if c.TimeLimit < 0 {
		return errors.Errorf("time limit %v is negative", c.TimeLimit)
	}
	if c.MIPGap < 0 || c.MIPGap >= 1 {
		return errors.Errorf("mip gap %g is not in [0, 1)", c.MIPGap)
	}
	for _, name := range mip.Backends() {
		if name == c.Backend {
			return nil
		}
	}
	return errors.Wrapf(mip.ErrUnknownBackend, "%q (available: %v)", c.Backend, mip.Backends())
}

// Params converts the solver settings to mip.Params.
func (c Config) Params() mip.Params {
	return mip.Params{TimeLimit: c.TimeLimit, MIPGap: c.MIPGap, Options: c.Options}
}

// NewSolver instantiates the configured backend.
func (c Config) NewSolver() (mip.Solver, error) {
	return mip.NewSolver(c.Backend)
}
