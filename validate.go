package mipbench

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidSolution is returned when a solution breaks its instance.
var ErrInvalidSolution = errors.New("invalid solution")

// CheckColoring verifies that sol colors every vertex of inst properly with
// colors 1..num_colors, all of them used.
func CheckColoring(inst *ColoringInstance, sol *Solution) error {
	color := make([]int, inst.N+1)
	for _, vc := range sol.Coloring {
		if vc.Vertex < 1 || vc.Vertex > inst.N {
			return errors.Wrapf(ErrInvalidSolution, "vertex %d does not exist", vc.Vertex)
		}
		if color[vc.Vertex] != 0 {
			return errors.Wrapf(ErrInvalidSolution, "vertex %d colored twice", vc.Vertex)
		}
		if vc.Color < 1 || vc.Color > inst.N {
			return errors.Wrapf(ErrInvalidSolution, "vertex %d has color %d outside 1..%d", vc.Vertex, vc.Color, inst.N)
		}
		color[vc.Vertex] = vc.Color
	}
	for v := 1; v <= inst.N; v++ {
		if color[v] == 0 {
			return errors.Wrapf(ErrInvalidSolution, "vertex %d has no color", v)
		}
	}
	for _, e := range inst.Edges {
		if color[e.U] == color[e.V] {
			return errors.Wrapf(ErrInvalidSolution, "edge %d-%d joins two vertices of color %d", e.U, e.V, color[e.U])
		}
	}

	used := make(map[int]bool)
	maxColor := 0
	for v := 1; v <= inst.N; v++ {
		used[color[v]] = true
		if color[v] > maxColor {
			maxColor = color[v]
		}
	}
	if len(used) != maxColor {
		return errors.Wrapf(ErrInvalidSolution, "colors used are not 1..%d", maxColor)
	}
	if sol.NumColors != len(used) {
		return errors.Wrapf(ErrInvalidSolution, "num_colors is %d but %d colors are used", sol.NumColors, len(used))
	}
	return nil
}

// CheckFacilities verifies that every client of inst is served exactly once
// by an open eligible facility, that no facility exceeds its capacity and
// that the objective matches the assignment.
func CheckFacilities(inst *FacilityInstance, sol *Solution) error {
	entry := make(map[Pair]Entry)
	for _, e := range inst.Entries {
		entry[Pair{Facility: e.Facility, Client: e.Client}] = e
	}
	open := make(map[int]bool)
	for _, i := range sol.Open {
		if i < 1 || i > inst.Facilities {
			return errors.Wrapf(ErrInvalidSolution, "facility %d does not exist", i)
		}
		open[i] = true
	}

	served := make(map[int]int)
	load := make(map[int]float64)
	obj := inst.OpenCost * float64(len(open))
	for _, p := range sol.Assignments {
		e, ok := entry[p]
		if !ok {
			return errors.Wrapf(ErrInvalidSolution, "client %d is not eligible for facility %d", p.Client, p.Facility)
		}
		if !open[p.Facility] {
			return errors.Wrapf(ErrInvalidSolution, "client %d assigned to closed facility %d", p.Client, p.Facility)
		}
		served[p.Client]++
		load[p.Facility] += e.Demand
		obj += e.Cost
	}
	for j := 1; j <= inst.Clients; j++ {
		if served[j] != 1 {
			return errors.Wrapf(ErrInvalidSolution, "client %d is served %d times", j, served[j])
		}
	}
	for i, l := range load {
		if l > inst.Capacity+solTol {
			return errors.Wrapf(ErrInvalidSolution, "facility %d has load %g over capacity %g", i, l, inst.Capacity)
		}
	}
	if math.Abs(obj-sol.Objective) > solTol*math.Max(1, math.Abs(obj)) {
		return errors.Wrapf(ErrInvalidSolution, "objective is %f but the assignment costs %f", sol.Objective, obj)
	}
	return nil
}

// CheckSolution reads the instance sol was computed for and verifies sol
// against it. Solutions without an assignment have nothing to verify.
func CheckSolution(sol *Solution) error {
	if !sol.Status.HasSolution() {
		return nil
	}
	switch sol.Kind {
	case KindColoring:
		inst, err := ReadColoringInstance(sol.Instance)
		if err != nil {
			return err
		}
		return CheckColoring(inst, sol)
	case KindFacilities:
		inst, err := ReadFacilityInstance(sol.Instance)
		if err != nil {
			return err
		}
		return CheckFacilities(inst, sol)
	}
	return errors.Errorf("unknown solution kind %q", sol.Kind)
}
