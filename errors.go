package streetcover

import "errors"

var (
	// ErrDisconnectedGraph is returned when the provided road segments form
	// more than one connected component. A single closed route cannot
	// traverse a disconnected graph; trim the input to one component first
	// (OSMFileSource does this automatically).
	ErrDisconnectedGraph = errors.New("road network is not connected")

	// ErrEmptyNetwork is returned when no road segments are available
	// within the requested area.
	ErrEmptyNetwork = errors.New("no road segments in requested area")

	// ErrNoMatching indicates the odd-degree vertex set could not be
	// paired up. The odd-vertex count of any graph is even, so hitting
	// this is an internal-consistency fault upstream, not bad user input.
	ErrNoMatching = errors.New("no perfect matching over odd-degree vertices")

	// ErrNotEulerian indicates a vertex of odd degree survived
	// augmentation. This is an invariant violation in the pipeline.
	ErrNotEulerian = errors.New("graph is not Eulerian after augmentation")

	// ErrAddressNotFound is returned by geocoders for unresolvable input.
	ErrAddressNotFound = errors.New("address not found")
)
