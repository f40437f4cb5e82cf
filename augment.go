package streetcover

import (
	"github.com/pkg/errors"
)

// augmentGraph duplicates every edge along each matched pair's shortest
// path, adding parallel edges with identical weight and segment identity.
// After augmentation every vertex has even degree and the graph admits an
// Eulerian circuit. RoadSegment records are never touched; only the
// working graph's edge multiset grows.
//
// The returned value is the total weight added, which must equal the
// matching's TotalCost.
func augmentGraph(g *WorkingGraph, matching *Matching) (float64, error) {
	added := 0.0
	for _, pair := range matching.Pairs {
		if len(pair.Path) == 0 && pair.U != pair.V {
			return 0, errors.Wrapf(ErrNoMatching, "matched pair (%d, %d) has no path", pair.U, pair.V)
		}
		for _, eid := range pair.Path {
			dup := g.duplicateEdge(eid)
			added += dup.weight
		}
	}
	if odd := g.OddVertices(); len(odd) != 0 {
		return 0, errors.Wrapf(ErrNotEulerian, "%d odd vertices remain after augmentation", len(odd))
	}
	return added, nil
}
