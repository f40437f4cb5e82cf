package streetcover

import (
	"fmt"
	"io"
)

// SolutionMetrics summarizes one edge-cover solution.
//
// BaseMeters is the theoretical lower bound: the summed length of every
// road segment, each walked once. TotalMeters is the actual route length;
// the gap between them is exactly DuplicatedMeters, the re-traversed
// length chosen by the matching.
type SolutionMetrics struct {
	SegmentsTotal    int
	TraversalsTotal  int
	OddVertices      int
	BaseMeters       float64
	DuplicatedMeters float64
	TotalMeters      float64
	Efficiency       float64 // BaseMeters / TotalMeters, 1.0 when nothing is duplicated
}

func buildMetrics(g *WorkingGraph, circuit *EulerianCircuit, oddCount int, duplicated float64) SolutionMetrics {
	m := SolutionMetrics{
		TraversalsTotal:  len(circuit.Traversals),
		OddVertices:      oddCount,
		BaseMeters:       g.baseWeight(),
		DuplicatedMeters: duplicated,
		TotalMeters:      circuit.Length(g),
	}
	for _, e := range g.edges {
		if !e.duplicate {
			m.SegmentsTotal++
		}
	}
	if m.TotalMeters > 0 {
		m.Efficiency = m.BaseMeters / m.TotalMeters
	}
	return m
}

// Print writes a human readable report of the metrics.
func (m SolutionMetrics) Print(w io.Writer) {
	fmt.Fprintf(w, "Road segments:      %d\n", m.SegmentsTotal)
	fmt.Fprintf(w, "Traversals:         %d\n", m.TraversalsTotal)
	fmt.Fprintf(w, "Odd intersections:  %d\n", m.OddVertices)
	fmt.Fprintf(w, "Lower bound:        %.1f m\n", m.BaseMeters)
	fmt.Fprintf(w, "Re-traversed:       %.1f m\n", m.DuplicatedMeters)
	fmt.Fprintf(w, "Route length:       %.1f m\n", m.TotalMeters)
	fmt.Fprintf(w, "Efficiency:         %.1f%%\n", m.Efficiency*100)
}
