package mipbench

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

func TestApp_Coloring(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeFile(t, in, "tri.col", "c triangle\np edge 3 3\ne 1 2\ne 2 3\ne 1 3\n")
	writeFile(t, in, "broken.col", "p edge x\n")
	report := filepath.Join(out, "report.json")

	err := NewApp(KindColoring).Run([]string{
		"coloring",
		"--time-limit", "10",
		"--param", "lp=off",
		"--output-dir", out,
		"--print-model",
		"--report", report,
		filepath.Join(in, "*.col"),
	})
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}

	sol, err := ReadSolutionFile(filepath.Join(out, "sol_tri.txt"))
	if err != nil {
		t.Fatalf("ReadSolutionFile() err = %v", err)
	}
	if sol.Status != mip.StatusOptimal || sol.NumColors != 3 {
		t.Errorf("solution = %+v, want 3 colors, optimal", sol)
	}
	if _, err := os.Stat(filepath.Join(out, "tri.lp")); err != nil {
		t.Errorf("model export missing: %v", err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report missing: %v", err)
	}
	var r struct {
		Files    int `json:"files"`
		Failures []struct {
			Path string `json:"path"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if r.Files != 2 || len(r.Failures) != 1 || !strings.HasSuffix(r.Failures[0].Path, "broken.col") {
		t.Errorf("report = %+v, want 2 files and broken.col failed", r)
	}
}

func TestApp_FacilitiesCreatesOutputDir(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")
	writeFile(t, in, "fl.txt", "2 2 10 5 3\n1 1 2 3\n1 2 2 3\n2 2 1 2\n")

	err := NewApp(KindFacilities).Run([]string{"facilities", "--output-dir", out, filepath.Join(in, "fl.txt")})
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	sol, err := ReadSolutionFile(filepath.Join(out, "sol_fl.txt"))
	if err != nil {
		t.Fatalf("ReadSolutionFile() err = %v", err)
	}
	if sol.Kind != KindFacilities || sol.Status != mip.StatusOptimal || sol.Objective != 23 {
		t.Errorf("solution = %+v, want optimal with objective 23", sol)
	}
}

func TestApp_FlagsAfterPatterns(t *testing.T) {
	testCases := []struct {
		name string
		args func(pattern, out string) []string
	}{
		{
			name: "all flags trailing",
			args: func(pattern, out string) []string {
				return []string{"coloring", pattern, "--print-model", "--output-dir", out, "--time-limit", "30"}
			},
		},
		{
			name: "flags on both sides",
			args: func(pattern, out string) []string {
				return []string{"coloring", "--print-model", pattern, "--output-dir=" + out, "--param", "lp=off"}
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			in, out := t.TempDir(), t.TempDir()
			writeFile(t, in, "tri.col", "p edge 3 3\ne 1 2\ne 2 3\ne 1 3\n")

			if err := NewApp(KindColoring).Run(test.args(filepath.Join(in, "*.col"), out)); err != nil {
				t.Fatalf("Run() err = %v", err)
			}
			for _, name := range []string{"sol_tri.txt", "tri.lp"} {
				if _, err := os.Stat(filepath.Join(out, name)); err != nil {
					t.Errorf("%s not written to the output dir: %v", name, err)
				}
			}
		})
	}
}

func TestSplitArgs(t *testing.T) {
	var got struct {
		patterns []string
		cfg      Config
	}
	app := NewApp(KindColoring)
	app.Action = func(c *cli.Context) error {
		fv, patterns, err := splitArgs(c)
		if err != nil {
			return err
		}
		got.patterns, got.cfg = patterns, configFromFlags(fv)
		return nil
	}
	err := app.Run([]string{"coloring", "--time-limit", "5", "a*.col", "--print-model", "b*.col", "--time-limit", "9", "--mip-gap", "0.1"})
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	if diff := cmp.Diff([]string{"a*.col", "b*.col"}, got.patterns); diff != "" {
		t.Errorf("patterns returned unexpected diff (-want+got): %v", diff)
	}
	want := DefaultConfig()
	want.TimeLimit = 9 * time.Second
	want.MIPGap = 0.1
	want.PrintModel = true
	if diff := cmp.Diff(want, got.cfg); diff != "" {
		t.Errorf("config returned unexpected diff (-want+got): %v", diff)
	}
}

func TestApp_Errors(t *testing.T) {
	dir := t.TempDir()
	testCases := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no patterns", args: []string{"coloring"}},
		{name: "no match", args: []string{"coloring", filepath.Join(dir, "*.none")}},
		{name: "bad gap", args: []string{"coloring", "--mip-gap", "2", filepath.Join(dir, "*")}},
		{name: "bad param", args: []string{"coloring", "--param", "lp", filepath.Join(dir, "*")}},
		{name: "unknown trailing flag", args: []string{"coloring", filepath.Join(dir, "*"), "--time-limt", "5"}},
		{name: "bad trailing value", args: []string{"coloring", filepath.Join(dir, "*"), "--time-limit", "soon"}},
		{
			name:    "unknown backend",
			args:    []string{"coloring", "--backend", "cplex", filepath.Join(dir, "*")},
			wantErr: mip.ErrUnknownBackend,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			app := NewApp(KindColoring)
			app.Writer, app.ErrWriter = new(strings.Builder), new(strings.Builder)
			err := app.Run(test.args)
			if err == nil {
				t.Fatal("Run() err = nil, want error")
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("Run() err = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	r := &BatchReport{
		Files:     4,
		Elapsed:   1500 * time.Millisecond,
		Statuses:  map[mip.Status]int{mip.StatusOptimal: 2, mip.StatusInfeasible: 1},
		Failures:  []Failure{{Path: "x", Error: "boom"}},
		Cancelled: true,
	}
	want := "Done: 4 files in 1.5s, 2 optimal, 1 infeasible, 1 failed, interrupted"
	if got := summary(r); got != want {
		t.Errorf("summary() = %q, want %q", got, want)
	}
}
