package streetcover

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// exactMatcherLimit is the largest odd-vertex set solved by the exact
// subset-DP matcher; above it the solver falls back to the greedy
// matcher with pairwise-swap refinement.
const exactMatcherLimit = 20

// MatchedPair is one pair of odd-degree vertices together with the
// shortest path joining them and its cost.
type MatchedPair struct {
	U, V int
	Cost float64
	Path []int // edge ids along the shortest path between U and V
}

// Matching pairs up every odd-degree vertex exactly once. TotalCost is
// the summed shortest-path cost over all pairs; it equals the length of
// road that will be re-traversed.
type Matching struct {
	Pairs     []MatchedPair
	TotalCost float64
}

// MatchingSolver computes a minimum-weight perfect matching over the
// given vertices using pm for pairwise costs. Implementations must be
// deterministic under ties and must cover every vertex exactly once.
type MatchingSolver interface {
	Solve(pm *PathMatrix, vertices []int) (*Matching, error)
}

// autoMatcher picks the exact DP solver for small odd sets and the
// greedy solver above exactMatcherLimit.
type autoMatcher struct {
	limit int
}

func (m *autoMatcher) Solve(pm *PathMatrix, vertices []int) (*Matching, error) {
	limit := m.limit
	if limit <= 0 {
		limit = exactMatcherLimit
	}
	if len(vertices) <= limit {
		return (&exactMatcher{}).Solve(pm, vertices)
	}
	return (&greedyMatcher{}).Solve(pm, vertices)
}

// exactMatcher finds the optimal perfect matching by dynamic programming
// over vertex subsets: fix the lowest unmatched vertex of each subset and
// try every partner. O(2^n * n) time, O(2^n) space; n is capped by
// exactMatcherLimit in practice.
type exactMatcher struct{}

func (m *exactMatcher) Solve(pm *PathMatrix, vertices []int) (*Matching, error) {
	n := len(vertices)
	if n == 0 {
		return &Matching{}, nil
	}
	if n%2 != 0 {
		return nil, errors.Wrapf(ErrNoMatching, "odd vertex count %d", n)
	}

	full := 1 << uint(n)
	best := make([]float64, full)
	parentI := make([]int8, full)
	parentJ := make([]int8, full)
	for mask := 1; mask < full; mask++ {
		best[mask] = math.Inf(1)
		parentI[mask] = -1
		parentJ[mask] = -1
	}

	// best[mask] = minimum cost of pairing up exactly the vertices in mask
	for mask := 0; mask < full-1; mask++ {
		if math.IsInf(best[mask], 1) {
			continue
		}
		// lowest vertex not yet matched in this subset
		i := 0
		for mask&(1<<uint(i)) != 0 {
			i++
		}
		for j := i + 1; j < n; j++ {
			if mask&(1<<uint(j)) != 0 {
				continue
			}
			next := mask | 1<<uint(i) | 1<<uint(j)
			cost := best[mask] + pm.Dist(vertices[i], vertices[j])
			// strict improvement keeps the smallest partner index on ties
			if cost < best[next] {
				best[next] = cost
				parentI[next] = int8(i)
				parentJ[next] = int8(j)
			}
		}
	}

	if math.IsInf(best[full-1], 1) {
		return nil, errors.Wrap(ErrNoMatching, "vertices are mutually unreachable")
	}

	matching := &Matching{TotalCost: best[full-1]}
	for mask := full - 1; mask != 0; {
		i, j := int(parentI[mask]), int(parentJ[mask])
		u, v := vertices[i], vertices[j]
		matching.Pairs = append(matching.Pairs, MatchedPair{
			U:    u,
			V:    v,
			Cost: pm.Dist(u, v),
			Path: pm.Path(u, v),
		})
		mask &^= 1<<uint(i) | 1<<uint(j)
	}

	sortPairs(matching.Pairs)
	return matching, nil
}

// greedyMatcher sorts all pairs by (cost, u, v) and takes them greedily,
// then applies pairwise-swap improvement until no swap lowers the total.
// Not guaranteed optimal, but deterministic and close in practice on
// street graphs where matched vertices are near each other.
type greedyMatcher struct{}

func (m *greedyMatcher) Solve(pm *PathMatrix, vertices []int) (*Matching, error) {
	n := len(vertices)
	if n == 0 {
		return &Matching{}, nil
	}
	if n%2 != 0 {
		return nil, errors.Wrapf(ErrNoMatching, "odd vertex count %d", n)
	}

	type candidate struct {
		u, v int
		cost float64
	}
	candidates := make([]candidate, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			candidates = append(candidates, candidate{
				u:    vertices[i],
				v:    vertices[j],
				cost: pm.Dist(vertices[i], vertices[j]),
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].cost != candidates[j].cost {
			return candidates[i].cost < candidates[j].cost
		}
		if candidates[i].u != candidates[j].u {
			return candidates[i].u < candidates[j].u
		}
		return candidates[i].v < candidates[j].v
	})

	partner := make(map[int]int, n)
	for _, c := range candidates {
		if _, ok := partner[c.u]; ok {
			continue
		}
		if _, ok := partner[c.v]; ok {
			continue
		}
		partner[c.u] = c.v
		partner[c.v] = c.u
	}
	if len(partner) != n {
		return nil, errors.Wrap(ErrNoMatching, "greedy pairing left vertices uncovered")
	}

	pairs := [][2]int{}
	for _, u := range vertices {
		v := partner[u]
		if u < v {
			pairs = append(pairs, [2]int{u, v})
		}
	}

	// pairwise-swap refinement: for pairs (a,b) and (c,d) try (a,c)(b,d)
	// and (a,d)(b,c); keep the cheapest recombination
	improved := true
	for improved {
		improved = false
		for i := 0; i < len(pairs); i++ {
			for j := i + 1; j < len(pairs); j++ {
				a, b := pairs[i][0], pairs[i][1]
				c, d := pairs[j][0], pairs[j][1]
				current := pm.Dist(a, b) + pm.Dist(c, d)
				swapAC := pm.Dist(a, c) + pm.Dist(b, d)
				swapAD := pm.Dist(a, d) + pm.Dist(b, c)
				if swapAC < current && swapAC <= swapAD {
					pairs[i] = orderedPair(a, c)
					pairs[j] = orderedPair(b, d)
					improved = true
				} else if swapAD < current {
					pairs[i] = orderedPair(a, d)
					pairs[j] = orderedPair(b, c)
					improved = true
				}
			}
		}
	}

	matching := &Matching{}
	for _, p := range pairs {
		cost := pm.Dist(p[0], p[1])
		matching.Pairs = append(matching.Pairs, MatchedPair{
			U:    p[0],
			V:    p[1],
			Cost: cost,
			Path: pm.Path(p[0], p[1]),
		})
		matching.TotalCost += cost
	}
	sortPairs(matching.Pairs)
	return matching, nil
}

func orderedPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func sortPairs(pairs []MatchedPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].U != pairs[j].U {
			return pairs[i].U < pairs[j].U
		}
		return pairs[i].V < pairs[j].V
	})
}
