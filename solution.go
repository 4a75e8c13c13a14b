package mipbench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// WriteSolution writes sol in the sol_<name>.txt format:
//
//	instance: <path>
//	status: <status>
//	num_colors: <n>        coloring, with a solution
//	objective: <%.6f>      facilities, with a solution
//	open_facilities:       facilities
//	<i>
//	assignments:           coloring with a solution, facilities always
//	<v> <k> | <i> <j>
func WriteSolution(w io.Writer, sol *Solution) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "instance: %s\n", sol.Instance)
	fmt.Fprintf(bw, "status: %s\n", sol.Status)
	switch sol.Kind {
	case KindColoring:
		if sol.Status.HasSolution() {
			fmt.Fprintf(bw, "num_colors: %d\n", sol.NumColors)
			fmt.Fprintln(bw, "assignments:")
			for _, vc := range sol.Coloring {
				fmt.Fprintf(bw, "%d %d\n", vc.Vertex, vc.Color)
			}
		}
	case KindFacilities:
		if sol.Status.HasSolution() {
			fmt.Fprintf(bw, "objective: %.6f\n", sol.Objective)
		}
		fmt.Fprintln(bw, "open_facilities:")
		for _, i := range sol.Open {
			fmt.Fprintf(bw, "%d\n", i)
		}
		fmt.Fprintln(bw, "assignments:")
		for _, p := range sol.Assignments {
			fmt.Fprintf(bw, "%d %d\n", p.Facility, p.Client)
		}
	default:
		return errors.Errorf("unknown solution kind %q", sol.Kind)
	}
	return bw.Flush()
}

// SaveSolution writes sol to SolutionFileName(sol.Instance) in dir and
// returns the path written.
func SaveSolution(dir string, sol *Solution) (string, error) {
	out := SolutionFileName(sol.Instance)
	if dir != "" {
		out = filepath.Join(dir, out)
	}
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if err := WriteSolution(f, sol); err != nil {
		f.Close()
		return "", errors.Wrap(err, out)
	}
	return out, errors.Wrap(f.Close(), out)
}

// ReadSolution parses what WriteSolution wrote. A file with open_facilities
// or objective lines is a facilities solution, anything else a coloring.
func ReadSolution(r io.Reader) (*Solution, error) {
	sol := &Solution{Kind: KindColoring}
	section := ""
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if key, val, ok := strings.Cut(line, ":"); ok {
			val = strings.TrimSpace(val)
			switch key {
			case "instance":
				sol.Instance = val
			case "status":
				st, err := mip.ParseStatus(val)
				if err != nil {
					return nil, errors.Wrapf(ErrFormat, "line %d: %v", ln, err)
				}
				sol.Status = st
			case "num_colors":
				n, err := strconv.Atoi(val)
				if err != nil {
					return nil, errors.Wrapf(ErrFormat, "line %d: num_colors %q", ln, val)
				}
				sol.NumColors = n
				sol.Objective = float64(n)
			case "objective":
				obj, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, errors.Wrapf(ErrFormat, "line %d: objective %q", ln, val)
				}
				sol.Kind = KindFacilities
				sol.Objective = obj
			case "open_facilities":
				sol.Kind = KindFacilities
				section = key
			case "assignments":
				section = key
			default:
				return nil, errors.Wrapf(ErrFormat, "line %d: unknown key %q", ln, key)
			}
			continue
		}

		fields := strings.Fields(line)
		nums := make([]int, len(fields))
		for k, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(ErrFormat, "line %d: %q is not an integer", ln, f)
			}
			nums[k] = n
		}
		switch {
		case section == "open_facilities" && len(nums) == 1:
			sol.Open = append(sol.Open, nums[0])
		case section == "assignments" && len(nums) == 2 && sol.Kind == KindFacilities:
			sol.Assignments = append(sol.Assignments, Pair{Facility: nums[0], Client: nums[1]})
		case section == "assignments" && len(nums) == 2:
			sol.Coloring = append(sol.Coloring, VertexColor{Vertex: nums[0], Color: nums[1]})
		default:
			return nil, errors.Wrapf(ErrFormat, "line %d: unexpected %q", ln, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sol, nil
}

// ReadSolutionFile reads a solution file from disk.
func ReadSolutionFile(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sol, err := ReadSolution(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return sol, nil
}
