package mipbench

import (
	"math"
	"math/rand"
)

// GenerateColoring draws a G(n, p) graph: every vertex pair becomes an edge
// with probability density.
func GenerateColoring(rng *rand.Rand, n int, density float64) *ColoringInstance {
	inst := &ColoringInstance{N: n}
	for u := 1; u <= n; u++ {
		for v := u + 1; v <= n; v++ {
			if rng.Float64() < density {
				inst.Edges = append(inst.Edges, Edge{U: u, V: v})
			}
		}
	}
	return inst
}

// GenerateFacilities places facilities and clients uniformly in a 100x100
// square. A pair is eligible with probability density and costs its rounded
// euclidean distance. Every client keeps at least one eligible facility.
// Capacity is set so that roughly a third of the facilities are needed.
func GenerateFacilities(rng *rand.Rand, facilities, clients int, density float64) *FacilityInstance {
	type point struct{ x, y float64 }
	place := func(n int) []point {
		ps := make([]point, n)
		for i := range ps {
			ps[i] = point{rng.Float64() * 100, rng.Float64() * 100}
		}
		return ps
	}
	fs, cs := place(facilities), place(clients)
	demand := make([]float64, clients)
	total := 0.0
	for j := range demand {
		demand[j] = float64(1 + rng.Intn(20))
		total += demand[j]
	}

	inst := &FacilityInstance{
		Facilities: facilities,
		Clients:    clients,
		OpenCost:   float64(100 + rng.Intn(400)),
	}
	if facilities > 0 {
		inst.Capacity = math.Ceil(3 * total / float64(facilities))
	}
	for j := 0; j < clients && facilities > 0; j++ {
		forced := rng.Intn(facilities)
		for i := 0; i < facilities; i++ {
			if i != forced && rng.Float64() >= density {
				continue
			}
			d := math.Hypot(fs[i].x-cs[j].x, fs[i].y-cs[j].y)
			inst.Entries = append(inst.Entries, Entry{
				Facility: i + 1,
				Client:   j + 1,
				Cost:     math.Round(d),
				Demand:   demand[j],
			})
		}
	}
	return inst
}
