package mipbench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// ReadFacilityInstance reads a facility location token file.
func ReadFacilityInstance(path string) (*FacilityInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inst, err := ParseFacilityInstance(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return inst, nil
}

// ParseFacilityInstance reads the header `ni nj c Q NL` followed by NL
// groups `i j g p` from a whitespace separated token stream. Blank lines and
// lines starting with # are ignored; tokens after the last group are too.
func ParseFacilityInstance(r io.Reader) (*FacilityInstance, error) {
	var toks []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		toks = append(toks, strings.Fields(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(toks) < 5 {
		return nil, errors.Wrapf(ErrFormat, "header needs 5 tokens, found %d", len(toks))
	}

	tr := tokenReader{toks: toks}
	inst := &FacilityInstance{
		Facilities: tr.nextInt("ni"),
		Clients:    tr.nextInt("nj"),
		OpenCost:   tr.nextFloat("c"),
		Capacity:   tr.nextFloat("Q"),
	}
	nl := tr.nextInt("NL")
	if tr.err != nil {
		return nil, tr.err
	}
	if inst.Facilities < 0 || inst.Clients < 0 {
		return nil, errors.Wrapf(ErrFormat, "negative size %d facilities, %d clients", inst.Facilities, inst.Clients)
	}
	if nl < 0 {
		return nil, errors.Wrapf(ErrFormat, "negative entry count %d", nl)
	}
	if rem := len(toks) - 5; nl > rem/4 {
		return nil, errors.Wrapf(ErrFormat, "%d entries announced, only %d tokens follow", nl, rem)
	}
	inst.Entries = make([]Entry, nl)
	for k := range inst.Entries {
		inst.Entries[k] = Entry{
			Facility: tr.nextInt("i"),
			Client:   tr.nextInt("j"),
			Cost:     tr.nextFloat("g"),
			Demand:   tr.nextFloat("p"),
		}
	}
	if tr.err != nil {
		return nil, tr.err
	}
	return inst, nil
}

// tokenReader consumes tokens in order and keeps the first parse error.
type tokenReader struct {
	toks []string
	pos  int
	err  error
}

func (tr *tokenReader) next() string {
	t := tr.toks[tr.pos]
	tr.pos++
	return t
}

func (tr *tokenReader) nextInt(field string) int {
	t := tr.next()
	if tr.err != nil {
		return 0
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		tr.err = errors.Wrapf(ErrFormat, "token %d (%s): %q is not an integer", tr.pos, field, t)
	}
	return v
}

func (tr *tokenReader) nextFloat(field string) float64 {
	t := tr.next()
	if tr.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		tr.err = errors.Wrapf(ErrFormat, "token %d (%s): %q is not a number", tr.pos, field, t)
	}
	return v
}

// WriteFacilityInstance writes inst in the format ParseFacilityInstance
// reads.
func WriteFacilityInstance(w io.Writer, inst *FacilityInstance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %s %s %d\n", inst.Facilities, inst.Clients,
		formatFloat(inst.OpenCost), formatFloat(inst.Capacity), len(inst.Entries))
	for _, e := range inst.Entries {
		fmt.Fprintf(bw, "%d %d %s %s\n", e.Facility, e.Client, formatFloat(e.Cost), formatFloat(e.Demand))
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FacilityVars holds the variables of a facility model. Y[i-1] is y_i; X and
// Pairs run in parallel in variable creation order.
type FacilityVars struct {
	Y     []mip.Var
	X     []mip.Var
	Pairs []Pair
}

// BuildFacilityModel formulates inst:
//
//	min  sum_i c*y_i + sum_ij g_ij*x_ij
//	s.t. sum_i x_ij = 1               assign_client_<j>
//	     sum_j p_ij*x_ij <= Q*y_i     cap_fac_<i>
//
// x_ij exists only for listed pairs; a pair listed twice keeps its first
// position and its last cost and demand. A client without eligible
// facilities gets `0 = 1` (assign_client_<j>_impossible) and a facility
// without eligible clients gets `0 <= Q*y_i` (cap_fac_<i>_trivial).
func BuildFacilityModel(name string, inst *FacilityInstance) (*mip.Model, *FacilityVars, error) {
	ni, nj := inst.Facilities, inst.Clients
	if ni < 0 || nj < 0 {
		return nil, nil, errors.Wrapf(ErrFormat, "negative size %d facilities, %d clients", ni, nj)
	}
	for _, e := range inst.Entries {
		if e.Facility < 1 || e.Facility > ni || e.Client < 1 || e.Client > nj {
			return nil, nil, errors.Wrapf(ErrFormat, "entry %d %d outside %d facilities, %d clients", e.Facility, e.Client, ni, nj)
		}
	}
	if name == "" {
		name = string(KindFacilities)
	}
	m := mip.NewModel(name)
	vars := &FacilityVars{Y: make([]mip.Var, ni)}

	var err error
	for i := 1; i <= ni; i++ {
		if vars.Y[i-1], err = m.NewBinaryVar(fmt.Sprintf("y_%d", i)); err != nil {
			return nil, nil, err
		}
	}

	entry := make(map[Pair]Entry)
	for _, e := range inst.Entries {
		p := Pair{Facility: e.Facility, Client: e.Client}
		if _, ok := entry[p]; !ok {
			vars.Pairs = append(vars.Pairs, p)
		}
		entry[p] = e
	}
	x := make(map[Pair]mip.Var, len(vars.Pairs))
	for _, p := range vars.Pairs {
		v, err := m.NewBinaryVar(fmt.Sprintf("x_%d_%d", p.Facility, p.Client))
		if err != nil {
			return nil, nil, err
		}
		x[p] = v
		vars.X = append(vars.X, v)
	}

	obj := mip.NewLinearExpr()
	for _, y := range vars.Y {
		obj.AddTerm(y, inst.OpenCost)
	}
	for _, p := range vars.Pairs {
		obj.AddTerm(x[p], entry[p].Cost)
	}
	if err := m.Minimize(obj); err != nil {
		return nil, nil, err
	}

	for j := 1; j <= nj; j++ {
		lhs := mip.NewLinearExpr()
		eligible := 0
		for i := 1; i <= ni; i++ {
			if v, ok := x[Pair{Facility: i, Client: j}]; ok {
				lhs.Add(v)
				eligible++
			}
		}
		ctName := fmt.Sprintf("assign_client_%d", j)
		if eligible == 0 {
			ctName += "_impossible"
			lhs = mip.NewConstant(0)
		}
		if _, err := m.AddEquality(lhs, mip.NewConstant(1), ctName); err != nil {
			return nil, nil, err
		}
	}

	for i := 1; i <= ni; i++ {
		lhs := mip.NewLinearExpr()
		eligible := 0
		for j := 1; j <= nj; j++ {
			p := Pair{Facility: i, Client: j}
			if v, ok := x[p]; ok {
				lhs.AddTerm(v, entry[p].Demand)
				eligible++
			}
		}
		ctName := fmt.Sprintf("cap_fac_%d", i)
		if eligible == 0 {
			ctName += "_trivial"
		}
		rhs := mip.NewLinearExpr().AddTerm(vars.Y[i-1], inst.Capacity)
		if _, err := m.AddLessOrEqual(lhs, rhs, ctName); err != nil {
			return nil, nil, err
		}
	}
	return m, vars, nil
}

// Extract turns a solver result into a facility Solution.
func (fv *FacilityVars) Extract(res *mip.Result) *Solution {
	sol := &Solution{Kind: KindFacilities, Status: res.Status}
	if !res.HasSolution() {
		return sol
	}
	sol.Objective = res.Objective
	for i, y := range fv.Y {
		if isOne(res.Value(y)) {
			sol.Open = append(sol.Open, i+1)
		}
	}
	for k, x := range fv.X {
		if isOne(res.Value(x)) {
			sol.Assignments = append(sol.Assignments, fv.Pairs[k])
		}
	}
	return sol
}
