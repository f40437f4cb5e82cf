package streetcover

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Solver runs the full edge-cover pipeline: working graph construction,
// odd-vertex pairing, augmentation, Eulerian circuit extraction and
// route assembly. Each Solve call owns its graph; a Solver is safe to
// reuse sequentially but holds no cross-call state.
type Solver struct {
	snapTolerance float64
	oracle        PathOracle
	matcher       MatchingSolver
	verbose       bool
}

// Solution carries everything one computation produced.
type Solution struct {
	Route   *Route
	Circuit *EulerianCircuit
	Graph   *WorkingGraph
	Metrics SolutionMetrics
}

// NewSolver creates a solver with deterministic defaults: snap tolerance
// of DefaultSnapTolerance, the per-source Dijkstra oracle and the
// auto-selecting matcher.
func NewSolver(options ...func(*Solver)) *Solver {
	solver := &Solver{
		snapTolerance: DefaultSnapTolerance,
		oracle:        &dijkstraOracle{workers: 1},
		matcher:       &autoMatcher{},
	}
	for _, option := range options {
		option(solver)
	}
	return solver
}

// WithSnapTolerance overrides the endpoint snapping tolerance (degrees).
func WithSnapTolerance(tolerance float64) func(*Solver) {
	return func(solver *Solver) {
		solver.snapTolerance = tolerance
	}
}

// WithOracle substitutes the shortest-path oracle.
func WithOracle(oracle PathOracle) func(*Solver) {
	return func(solver *Solver) {
		solver.oracle = oracle
	}
}

// WithCHOracle switches shortest-path queries to the contraction
// hierarchies oracle. Faster on large odd sets, but equal-cost paths are
// broken by the library rather than by segment identifier.
func WithCHOracle() func(*Solver) {
	return func(solver *Solver) {
		solver.oracle = &CHOracle{}
	}
}

// WithParallelOracle fans per-source shortest-path searches out over the
// given number of workers. Results do not depend on the worker count.
func WithParallelOracle(workers int) func(*Solver) {
	return func(solver *Solver) {
		solver.oracle = &dijkstraOracle{workers: workers}
	}
}

// WithMatcher substitutes the matching solver.
func WithMatcher(matcher MatchingSolver) func(*Solver) {
	return func(solver *Solver) {
		solver.matcher = matcher
	}
}

// WithVerbose enables stage progress output.
func WithVerbose(verbose bool) func(*Solver) {
	return func(solver *Solver) {
		solver.verbose = verbose
	}
}

// Solve computes a minimum-duplication closed route covering every given
// road segment at least once, anchored at the graph vertex nearest to
// start.
func (solver *Solver) Solve(segments []RoadSegment, start GeoPoint) (*Solution, error) {
	st := time.Now()
	if solver.verbose {
		fmt.Printf("Building working graph from %d segments...", len(segments))
	}
	g, err := BuildWorkingGraph(segments, solver.snapTolerance)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build working graph")
	}
	if solver.verbose {
		fmt.Printf("Done in %v\n\tVertices: %d Edges: %d\n", time.Since(st), g.VertexCount(), g.EdgeCount())
	}

	odd := g.OddVertices()
	if len(odd)%2 != 0 {
		// handshaking lemma guarantees an even count; a violation means
		// the graph construction itself is broken
		return nil, errors.Wrapf(ErrNoMatching, "odd-degree vertex count %d is odd", len(odd))
	}

	duplicated := 0.0
	if len(odd) > 0 {
		if solver.verbose {
			fmt.Printf("Pairing %d odd intersections...", len(odd))
		}
		st = time.Now()
		pm, err := solver.oracle.PairwisePaths(g, odd)
		if err != nil {
			return nil, errors.Wrap(err, "Can't compute pairwise shortest paths")
		}
		matching, err := solver.matcher.Solve(pm, odd)
		if err != nil {
			return nil, errors.Wrap(err, "Can't match odd intersections")
		}
		duplicated, err = augmentGraph(g, matching)
		if err != nil {
			return nil, errors.Wrap(err, "Can't augment graph")
		}
		if solver.verbose {
			fmt.Printf("Done in %v\n\tRe-traversed length: %.1f m\n", time.Since(st), duplicated)
		}
	} else if solver.verbose {
		fmt.Println("All intersections have even degree, no augmentation needed")
	}

	startVertex := g.NearestVertex(start)

	if solver.verbose {
		fmt.Printf("Extracting Eulerian circuit...")
	}
	st = time.Now()
	circuit, err := eulerianCircuit(g, startVertex)
	if err != nil {
		return nil, errors.Wrap(err, "Can't extract Eulerian circuit")
	}
	if solver.verbose {
		fmt.Printf("Done in %v\n\tTraversals: %d\n", time.Since(st), len(circuit.Traversals))
	}

	route, err := assembleRoute(g, circuit, startVertex, duplicated)
	if err != nil {
		return nil, errors.Wrap(err, "Can't assemble route")
	}

	return &Solution{
		Route:   route,
		Circuit: circuit,
		Graph:   g,
		Metrics: buildMetrics(g, circuit, len(odd), duplicated),
	}, nil
}
