package streetcover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// NetworkConfig filters OSM ways by tag when loading a road network.
type NetworkConfig struct {
	EntityName string // currently 'highway' only
	Tags       []string
}

// DefaultNetworkConfig returns the drivable-road tag set.
func DefaultNetworkConfig() *NetworkConfig {
	return &NetworkConfig{
		EntityName: "highway",
		Tags: []string{
			"motorway", "motorway_link", "trunk", "trunk_link",
			"primary", "primary_link", "secondary", "secondary_link",
			"tertiary", "tertiary_link", "residential", "unclassified",
			"road", "living_street",
		},
	}
}

// CheckTag checks if incoming tag is represented in configuration
func (cfg *NetworkConfig) CheckTag(tag string) bool {
	for i := range cfg.Tags {
		if cfg.Tags[i] == tag {
			return true
		}
	}
	return false
}

// NetworkSource supplies the road segments within a radius of a center
// point. It is the boundary to the underlying map data; the solver never
// fetches data itself.
type NetworkSource interface {
	RoadNetwork(center GeoPoint, radiusMeters float64) ([]RoadSegment, error)
}

// OSMScanner is satisfied by both the XML and the PBF scanners.
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// OSMFileSource loads road segments from a local .osm / .osm.pbf file,
// splits ways at intersections and trims the result to the largest
// connected component around the requested center.
type OSMFileSource struct {
	Filename      string
	Config        *NetworkConfig
	SnapTolerance float64
	Verbose       bool
}

// scannedWay is a tag-filtered way kept for segment splitting.
type scannedWay struct {
	id       osm.WayID
	name     string
	roadType string
	nodes    []osm.NodeID
}

// RoadNetwork implements NetworkSource.
func (src *OSMFileSource) RoadNetwork(center GeoPoint, radiusMeters float64) ([]RoadSegment, error) {
	if radiusMeters <= 0 {
		return nil, errors.Errorf("radius must be positive, got %f", radiusMeters)
	}
	cfg := src.Config
	if cfg == nil {
		cfg = DefaultNetworkConfig()
	}

	file, err := os.Open(src.Filename)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer file.Close()

	/* Process ways */
	if src.Verbose {
		fmt.Printf("Scanning ways...")
	}
	st := time.Now()
	scannerWays, err := newOSMScanner(src.Filename, file)
	if err != nil {
		return nil, err
	}
	ways := []scannedWay{}
	nodesSeen := make(map[osm.NodeID]struct{})
	for scannerWays.Scan() {
		obj := scannerWays.Object()
		if obj.ObjectID().Type() != "way" {
			continue
		}
		way := obj.(*osm.Way)
		tagMap := way.TagMap()
		tag, ok := tagMap[cfg.EntityName]
		if !ok {
			continue
		}
		if !cfg.CheckTag(tag) {
			continue
		}
		prepared := scannedWay{
			id:       way.ID,
			name:     way.Tags.Find("name"),
			roadType: tag,
			nodes:    make([]osm.NodeID, len(way.Nodes)),
		}
		for i, wayNode := range way.Nodes {
			prepared.nodes[i] = wayNode.ID
			nodesSeen[wayNode.ID] = struct{}{}
		}
		ways = append(ways, prepared)
	}
	if scannerWays.Err() != nil {
		scannerWays.Close()
		return nil, errors.Wrap(scannerWays.Err(), "Scanner error on Ways")
	}
	scannerWays.Close()
	if src.Verbose {
		fmt.Printf("Done in %v\n\tWays: %d\n", time.Since(st), len(ways))
	}

	/* Process nodes */
	if src.Verbose {
		fmt.Printf("Scanning nodes...")
	}
	st = time.Now()
	if _, err := file.Seek(0, 0); err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking")
	}
	scannerNodes, err := newOSMScanner(src.Filename, file)
	if err != nil {
		return nil, err
	}
	nodes := make(map[osm.NodeID]GeoPoint)
	for scannerNodes.Scan() {
		obj := scannerNodes.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		if _, ok := nodesSeen[node.ID]; ok {
			nodes[node.ID] = GeoPoint{Lat: node.Lat, Lon: node.Lon}
		}
	}
	if scannerNodes.Err() != nil {
		scannerNodes.Close()
		return nil, errors.Wrap(scannerNodes.Err(), "Scanner error on Nodes")
	}
	scannerNodes.Close()
	if src.Verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), len(nodes))
	}

	segments, err := splitWays(ways, nodes)
	if err != nil {
		return nil, err
	}

	segments = cropByRadius(segments, center, radiusMeters)
	if len(segments) == 0 {
		return nil, errors.Wrapf(ErrEmptyNetwork, "within %.0f m of %s", radiusMeters, center)
	}

	tolerance := src.SnapTolerance
	if tolerance <= 0 {
		tolerance = DefaultSnapTolerance
	}
	trimmed, err := largestComponentSegments(segments, tolerance)
	if err != nil {
		return nil, err
	}
	if src.Verbose && len(trimmed) != len(segments) {
		fmt.Printf("Dropped %d segments outside the largest connected component\n", len(segments)-len(trimmed))
	}
	return trimmed, nil
}

// newOSMScanner guesses file format from the extension, as the file may
// be XML ('.osm', '.xml') or PBF ('.pbf') encoded.
func newOSMScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	default:
		return nil, errors.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// splitWays cuts every way at intersection nodes (nodes used by more
// than one way, or used twice within one way) so each resulting segment
// runs intersection to intersection. Way endpoints always count as
// intersections.
func splitWays(ways []scannedWay, nodes map[osm.NodeID]GeoPoint) ([]RoadSegment, error) {
	useCount := make(map[osm.NodeID]int, len(nodes))
	for _, way := range ways {
		for i, nodeID := range way.nodes {
			if i == 0 || i == len(way.nodes)-1 {
				useCount[nodeID] += 2
			} else {
				useCount[nodeID]++
			}
		}
	}

	segments := []RoadSegment{}
	for _, way := range ways {
		var source osm.NodeID
		geometry := orb.LineString{}
		for i, nodeID := range way.nodes {
			pt, ok := nodes[nodeID]
			if !ok {
				return nil, errors.Errorf("Missing node with id: %d", nodeID)
			}
			if i == 0 {
				source = nodeID
				geometry = append(geometry, pt.Point())
				continue
			}
			geometry = append(geometry, pt.Point())
			if useCount[nodeID] > 1 || i == len(way.nodes)-1 {
				segments = append(segments, RoadSegment{
					OSMID:        SegmentID(way.id, source, nodeID),
					WayID:        way.id,
					Name:         way.name,
					RoadType:     way.roadType,
					Geom:         geometry,
					LengthMeters: sphericalLength(geometry),
				})
				source = nodeID
				geometry = orb.LineString{pt.Point()}
			}
		}
	}
	return segments, nil
}

// cropByRadius keeps segments with at least one endpoint inside the
// radius around center.
func cropByRadius(segments []RoadSegment, center GeoPoint, radiusMeters float64) []RoadSegment {
	kept := []RoadSegment{}
	for i := range segments {
		if greatCircleDistance(center, segments[i].First()) <= radiusMeters ||
			greatCircleDistance(center, segments[i].Last()) <= radiusMeters {
			kept = append(kept, segments[i])
		}
	}
	return kept
}

// largestComponentSegments drops every segment outside the largest
// connected component, so the graph builder downstream always receives
// a connected network.
func largestComponentSegments(segments []RoadSegment, snapTolerance float64) ([]RoadSegment, error) {
	g := newWorkingGraph(snapTolerance)
	for i := range segments {
		if err := g.addSegment(&segments[i]); err != nil {
			return nil, errors.Wrapf(err, "Can't add segment '%s'", segments[i].OSMID)
		}
	}
	labels, count := g.componentLabels()
	if count <= 1 {
		return segments, nil
	}

	perComponent := make([]int, count)
	for _, e := range g.edges {
		perComponent[labels[e.u]]++
	}
	largest := 0
	for c := 1; c < count; c++ {
		if perComponent[c] > perComponent[largest] {
			largest = c
		}
	}

	kept := make([]RoadSegment, 0, perComponent[largest])
	for i, e := range g.edges {
		if labels[e.u] == largest {
			kept = append(kept, segments[i])
		}
	}
	return kept, nil
}
