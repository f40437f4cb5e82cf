// Package storage persists road segments and computed routes.
//
// The schema keeps the segment's stable OSM identifier as the sole
// primary key of road_segments and stores each traversal of a route as
// its own route_segments row, keyed by (route_id, segment_order) so a
// route may legally cover the same segment more than once.
package storage

import (
	"context"

	"github.com/google/uuid"

	streetcover "github.com/streetcover/streetcover"
)

// Store is the persistence gateway the solver pipeline writes through.
// SaveRoute must be atomic: the route row and all its segment rows are
// committed together or not at all.
type Store interface {
	UpsertSegments(ctx context.Context, segments []streetcover.RoadSegment) error
	SegmentsByID(ctx context.Context, osmIDs []string) ([]streetcover.RoadSegment, error)
	SaveRoute(ctx context.Context, route *streetcover.Route) error
	GetRoute(ctx context.Context, id uuid.UUID) (*streetcover.Route, error)
	ListRoutes(ctx context.Context) ([]streetcover.Route, error)
	DeleteRoute(ctx context.Context, id uuid.UUID) error
}
