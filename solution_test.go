package mipbench

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

func TestWriteSolution(t *testing.T) {
	testCases := []struct {
		name string
		sol  *Solution
		want string
	}{
		{
			name: "coloring",
			sol: &Solution{
				Instance: "data/tri.col", Kind: KindColoring, Status: mip.StatusOptimal,
				Objective: 3, NumColors: 3,
				Coloring: []VertexColor{{1, 1}, {2, 2}, {3, 3}},
			},
			want: "instance: data/tri.col\nstatus: optimal\nnum_colors: 3\nassignments:\n1 1\n2 2\n3 3\n",
		},
		{
			name: "coloring without solution",
			sol:  &Solution{Instance: "g.col", Kind: KindColoring, Status: mip.StatusTimeLimit},
			want: "instance: g.col\nstatus: time_limit\n",
		},
		{
			name: "facilities",
			sol: &Solution{
				Instance: "fl.txt", Kind: KindFacilities, Status: mip.StatusFeasible,
				Objective: 12, Open: []int{1, 3}, Assignments: []Pair{{3, 1}, {1, 2}},
			},
			want: "instance: fl.txt\nstatus: feasible\nobjective: 12.000000\nopen_facilities:\n1\n3\nassignments:\n3 1\n1 2\n",
		},
		{
			name: "facilities without solution",
			sol:  &Solution{Instance: "fl.txt", Kind: KindFacilities, Status: mip.StatusInfeasible},
			want: "instance: fl.txt\nstatus: infeasible\nopen_facilities:\nassignments:\n",
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSolution(&buf, test.sol); err != nil {
				t.Fatalf("WriteSolution() err = %v", err)
			}
			if diff := cmp.Diff(test.want, buf.String()); diff != "" {
				t.Errorf("WriteSolution() returned unexpected diff (-want+got): %v", diff)
			}

			got, err := ReadSolution(&buf)
			if err != nil {
				t.Fatalf("ReadSolution() err = %v", err)
			}
			if diff := cmp.Diff(test.sol, got); diff != "" {
				t.Errorf("ReadSolution() returned unexpected diff (-want+got): %v", diff)
			}
		})
	}
}

func TestReadSolution_Malformed(t *testing.T) {
	for _, input := range []string{
		"instance: a\nstatus: great\n",
		"instance: a\nstatus: optimal\nnum_colors: two\n",
		"instance: a\nstatus: optimal\nweird: 1\n",
		"instance: a\nstatus: optimal\nassignments:\n1 x\n",
		"instance: a\nstatus: optimal\n1 2\n",
	} {
		if _, err := ReadSolution(strings.NewReader(input)); !errors.Is(err, ErrFormat) {
			t.Errorf("ReadSolution(%q) err = %v, want ErrFormat", input, err)
		}
	}
}

func TestSaveSolution(t *testing.T) {
	dir := t.TempDir()
	sol := &Solution{Instance: "some/where/inst.v2.txt", Kind: KindFacilities, Status: mip.StatusInfeasible}
	out, err := SaveSolution(dir, sol)
	if err != nil {
		t.Fatalf("SaveSolution() err = %v", err)
	}
	if want := filepath.Join(dir, "sol_inst.v2.txt"); out != want {
		t.Errorf("SaveSolution() = %q, want %q", out, want)
	}
	got, err := ReadSolutionFile(out)
	if err != nil {
		t.Fatalf("ReadSolutionFile() err = %v", err)
	}
	if diff := cmp.Diff(sol, got); diff != "" {
		t.Errorf("ReadSolutionFile() returned unexpected diff (-want+got): %v", diff)
	}

	if _, err := SaveSolution(filepath.Join(dir, "missing"), sol); err == nil {
		t.Error("SaveSolution(missing dir) err = nil, want error")
	}
}
