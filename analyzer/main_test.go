package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"git.solver4all.com/azaryc2s/mipbench"
	"git.solver4all.com/azaryc2s/mipbench/mip"
)

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	inst := filepath.Join(dir, "edge.col")
	if err := os.WriteFile(inst, []byte("p edge 2 1\ne 1 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sols := []*mipbench.Solution{
		{Instance: inst, Kind: mipbench.KindColoring, Status: mip.StatusFeasible, Objective: 1,
			NumColors: 1, Coloring: []mipbench.VertexColor{{Vertex: 1, Color: 1}, {Vertex: 2, Color: 1}}},
		{Instance: "fl.txt", Kind: mipbench.KindFacilities, Status: mip.StatusInfeasible},
	}
	for _, sol := range sols {
		if _, err := mipbench.SaveSolution(dir, sol); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "sol_junk.txt"), []byte("status: ?\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := analyze(&out, dir, true); err != nil {
		t.Fatalf("analyze() err = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		"Name,Kind,Status,Objective,Colors,Open,Assigned,Comment",
		inst + ",coloring,feasible,1.000000,1,0,2,ANALYZER: edge 1-2 joins two vertices of color 1: invalid solution",
		"fl.txt,facilities,infeasible,0.000000,0,0,0,",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("analyze() returned unexpected diff (-want+got): %v", diff)
	}

	if err := analyze(&out, t.TempDir(), false); err == nil {
		t.Error("analyze(empty dir) err = nil, want error")
	}
}
