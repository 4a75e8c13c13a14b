package mipbench

import (
	"time"

	"git.solver4all.com/azaryc2s/mipbench/mip"
)

// Kind names the problem an instance or solution belongs to.
type Kind string

const (
	KindColoring   Kind = "coloring"
	KindFacilities Kind = "facilities"
)

// Edge joins vertices U and V (1-indexed).
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// ColoringInstance is a graph to color with as few colors as possible.
type ColoringInstance struct {
	N     int    `json:"n"`
	Edges []Edge `json:"edges"`
}

// Entry makes client Client eligible for facility Facility at the given
// assignment cost and demand.
type Entry struct {
	Facility int     `json:"facility"`
	Client   int     `json:"client"`
	Cost     float64 `json:"cost"`
	Demand   float64 `json:"demand"`
}

// FacilityInstance is a capacitated facility location problem with a shared
// opening cost and capacity.
type FacilityInstance struct {
	Facilities int     `json:"facilities"`
	Clients    int     `json:"clients"`
	OpenCost   float64 `json:"open_cost"`
	Capacity   float64 `json:"capacity"`
	Entries    []Entry `json:"entries"`
}

// VertexColor is one line of a coloring assignment.
type VertexColor struct {
	Vertex int `json:"vertex"`
	Color  int `json:"color"`
}

// Pair assigns Client to Facility.
type Pair struct {
	Facility int `json:"facility"`
	Client   int `json:"client"`
}

// Solution is what gets written to a sol_<name>.txt file, plus some solve
// statistics that are only logged.
type Solution struct {
	Instance  string     `json:"instance"`
	Kind      Kind       `json:"kind"`
	Status    mip.Status `json:"status"`
	Objective float64    `json:"objective"`

	NumColors int           `json:"num_colors,omitempty"`
	Coloring  []VertexColor `json:"coloring,omitempty"`

	Open        []int  `json:"open,omitempty"`
	Assignments []Pair `json:"assignments,omitempty"`

	Backend string        `json:"backend,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Nodes   int64         `json:"nodes,omitempty"`
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}
