package mipbench

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// ErrFormat is returned for malformed instance and solution files.
var ErrFormat = errors.New("bad format")

// ReadColoringInstance reads a DIMACS-like edge file.
func ReadColoringInstance(path string) (*ColoringInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inst, err := ParseColoringInstance(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return inst, nil
}

// ParseColoringInstance parses `p edge <n> <m>` and `e <u> <v>` lines.
// Blank lines and lines starting with c, % or # are skipped, as is anything
// else it does not recognise. Edges are kept as given: no deduplication and
// no check against n.
func ParseColoringInstance(r io.Reader) (*ColoringInstance, error) {
	inst := &ColoringInstance{}
	header := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case "p":
			if len(parts) < 3 {
				return nil, errors.Wrapf(ErrFormat, "line %d: want `p edge <n> <m>`", ln)
			}
			n, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, errors.Wrapf(ErrFormat, "line %d: vertex count %q", ln, parts[2])
			}
			if n < 0 {
				return nil, errors.Wrapf(ErrFormat, "line %d: negative vertex count %d", ln, n)
			}
			inst.N = n
			header = true
		case "e":
			if len(parts) < 3 {
				return nil, errors.Wrapf(ErrFormat, "line %d: want `e <u> <v>`", ln)
			}
			u, err1 := strconv.Atoi(parts[1])
			v, err2 := strconv.Atoi(parts[2])
			if err1 != nil || err2 != nil {
				return nil, errors.Wrapf(ErrFormat, "line %d: edge %q %q", ln, parts[1], parts[2])
			}
			inst.Edges = append(inst.Edges, Edge{U: u, V: v})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !header {
		return nil, errors.Wrap(ErrFormat, "no `p edge <n> <m>` line")
	}
	return inst, nil
}

// WriteColoringInstance writes inst in the format ParseColoringInstance reads.
func WriteColoringInstance(w io.Writer, inst *ColoringInstance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p edge %d %d\n", inst.N, len(inst.Edges))
	for _, e := range inst.Edges {
		fmt.Fprintf(bw, "e %d %d\n", e.U, e.V)
	}
	return bw.Flush()
}

// ColoringVars holds the variables of a coloring model. Y[k-1] is y_k and
// X[v-1][k-1] is x_v_k.
type ColoringVars struct {
	K int
	Y []mip.Var
	X [][]mip.Var
}

// BuildColoringModel formulates inst with K = N colors:
//
//	min  sum_k y_k
//	s.t. sum_k x_v_k = 1            assign_<v>
//	     x_u_k + x_v_k <= 1         edge_<u>_<v>_<k>
//	     x_v_k <= y_k               link_<v>_<k>
//	     y_k >= y_k+1               sym_<k>
//
// Repeated edges get a #<n> suffix on their constraint names. Edges outside
// [1, N] are rejected with ErrFormat.
func BuildColoringModel(name string, inst *ColoringInstance) (*mip.Model, *ColoringVars, error) {
	n := inst.N
	if n < 0 {
		return nil, nil, errors.Wrapf(ErrFormat, "negative vertex count %d", n)
	}
	for _, e := range inst.Edges {
		if e.U < 1 || e.U > n || e.V < 1 || e.V > n {
			return nil, nil, errors.Wrapf(ErrFormat, "edge %d-%d outside vertices 1..%d", e.U, e.V, n)
		}
	}
	if name == "" {
		name = string(KindColoring)
	}
	m := mip.NewModel(name)
	vars := &ColoringVars{K: n, Y: make([]mip.Var, n), X: make([][]mip.Var, n)}

	var err error
	for k := 1; k <= n; k++ {
		if vars.Y[k-1], err = m.NewBinaryVar(fmt.Sprintf("y_%d", k)); err != nil {
			return nil, nil, err
		}
	}
	for v := 1; v <= n; v++ {
		vars.X[v-1] = make([]mip.Var, n)
		for k := 1; k <= n; k++ {
			if vars.X[v-1][k-1], err = m.NewBinaryVar(fmt.Sprintf("x_%d_%d", v, k)); err != nil {
				return nil, nil, err
			}
		}
	}

	if err := m.Minimize(mip.Sum(vars.Y...)); err != nil {
		return nil, nil, err
	}

	for v := 1; v <= n; v++ {
		if _, err := m.AddEquality(mip.Sum(vars.X[v-1]...), mip.NewConstant(1), fmt.Sprintf("assign_%d", v)); err != nil {
			return nil, nil, err
		}
	}

	seen := make(map[Edge]int)
	for _, e := range inst.Edges {
		seen[e]++
		suffix := ""
		if c := seen[e]; c > 1 {
			suffix = fmt.Sprintf("#%d", c)
		}
		for k := 1; k <= n; k++ {
			lhs := mip.Sum(vars.X[e.U-1][k-1], vars.X[e.V-1][k-1])
			ctName := fmt.Sprintf("edge_%d_%d_%d%s", e.U, e.V, k, suffix)
			if _, err := m.AddLessOrEqual(lhs, mip.NewConstant(1), ctName); err != nil {
				return nil, nil, err
			}
		}
	}

	for v := 1; v <= n; v++ {
		for k := 1; k <= n; k++ {
			ctName := fmt.Sprintf("link_%d_%d", v, k)
			if _, err := m.AddLessOrEqual(mip.Sum(vars.X[v-1][k-1]), mip.Sum(vars.Y[k-1]), ctName); err != nil {
				return nil, nil, err
			}
		}
	}

	for k := 1; k < n; k++ {
		ctName := fmt.Sprintf("sym_%d", k)
		if _, err := m.AddGreaterOrEqual(mip.Sum(vars.Y[k-1]), mip.Sum(vars.Y[k]), ctName); err != nil {
			return nil, nil, err
		}
	}
	return m, vars, nil
}

// Extract turns a solver result into a coloring Solution. Every vertex gets
// the first color whose x_v_k is 1; vertices without one are left out.
func (cv *ColoringVars) Extract(res *mip.Result) *Solution {
	sol := &Solution{Kind: KindColoring, Status: res.Status}
	if !res.HasSolution() {
		return sol
	}
	sol.Objective = res.Objective
	sol.NumColors = int(math.Round(res.Objective))
	for v, row := range cv.X {
		for k, x := range row {
			if isOne(res.Value(x)) {
				sol.Coloring = append(sol.Coloring, VertexColor{Vertex: v + 1, Color: k + 1})
				break
			}
		}
	}
	return sol
}
