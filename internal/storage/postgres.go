package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	streetcover "github.com/streetcover/streetcover"
)

// queryTimeout is applied to every database query.
const queryTimeout = 5 * time.Second

// ErrRouteNotFound is returned when a requested route does not exist.
var ErrRouteNotFound = errors.New("route not found")

// Postgres is the pgx-backed implementation of Store.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Pool exposes the underlying connection pool (migrations need it).
func (s *Postgres) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// UpsertSegments writes road segments, updating attributes of segments
// already known under the same osm_id.
func (s *Postgres) UpsertSegments(ctx context.Context, segments []streetcover.RoadSegment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for i := range segments {
		batch.Queue(`
			INSERT INTO road_segments (osm_id, name, road_type, length_meters, geom_wkt, last_updated)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (osm_id) DO UPDATE SET
				name = EXCLUDED.name,
				road_type = EXCLUDED.road_type,
				length_meters = EXCLUDED.length_meters,
				geom_wkt = EXCLUDED.geom_wkt,
				last_updated = now()`,
			segments[i].OSMID,
			segments[i].Name,
			segments[i].RoadType,
			segments[i].LengthMeters,
			streetcover.PrepareWKTLinestring(segments[i].Geom),
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range segments {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("storage: UpsertSegments: %w", err)
		}
	}
	return nil
}

// SegmentsByID loads road segments for the given identifiers. Unknown
// identifiers are simply absent from the result.
func (s *Postgres) SegmentsByID(ctx context.Context, osmIDs []string) ([]streetcover.RoadSegment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT osm_id, name, road_type, length_meters, geom_wkt
		FROM road_segments
		WHERE osm_id = ANY($1)
		ORDER BY osm_id`, osmIDs)
	if err != nil {
		return nil, fmt.Errorf("storage: SegmentsByID: %w", err)
	}
	defer rows.Close()

	segments := []streetcover.RoadSegment{}
	for rows.Next() {
		var seg streetcover.RoadSegment
		var geomWKT string
		if err := rows.Scan(&seg.OSMID, &seg.Name, &seg.RoadType, &seg.LengthMeters, &geomWKT); err != nil {
			return nil, fmt.Errorf("storage: SegmentsByID: scan: %w", err)
		}
		seg.Geom, err = streetcover.ParseWKTLinestring(geomWKT)
		if err != nil {
			return nil, fmt.Errorf("storage: SegmentsByID: segment %s: %w", seg.OSMID, err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// SaveRoute writes the route and all its ordered segment traversals in
// one transaction. On any failure nothing is persisted.
func (s *Postgres) SaveRoute(ctx context.Context, route *streetcover.Route) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: SaveRoute: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO routes (id, name, created_at, start_lat, start_lon, total_meters, duplicated_meters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		route.ID.String(),
		route.Name,
		route.CreatedAt,
		route.Start.Lat,
		route.Start.Lon,
		route.TotalMeters,
		route.DuplicatedMeters,
	)
	if err != nil {
		return fmt.Errorf("storage: SaveRoute: insert route: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rs := range route.Segments {
		batch.Queue(`
			INSERT INTO route_segments (route_id, segment_osm_id, segment_order, direction)
			VALUES ($1, $2, $3, $4)`,
			route.ID.String(), rs.SegmentOSMID, rs.Order, rs.Forward)
	}
	br := tx.SendBatch(ctx, batch)
	for range route.Segments {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("storage: SaveRoute: insert segments: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("storage: SaveRoute: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: SaveRoute: commit: %w", err)
	}
	return nil
}

// GetRoute loads a route with its ordered segment traversals.
func (s *Postgres) GetRoute(ctx context.Context, id uuid.UUID) (*streetcover.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	route := &streetcover.Route{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT name, created_at, start_lat, start_lon, total_meters, duplicated_meters
		FROM routes WHERE id = $1`, id.String()).
		Scan(&route.Name, &route.CreatedAt, &route.Start.Lat, &route.Start.Lon,
			&route.TotalMeters, &route.DuplicatedMeters)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: GetRoute: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT segment_osm_id, segment_order, direction
		FROM route_segments
		WHERE route_id = $1
		ORDER BY segment_order`, id.String())
	if err != nil {
		return nil, fmt.Errorf("storage: GetRoute: segments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rs streetcover.RouteSegment
		if err := rows.Scan(&rs.SegmentOSMID, &rs.Order, &rs.Forward); err != nil {
			return nil, fmt.Errorf("storage: GetRoute: scan segment: %w", err)
		}
		route.Segments = append(route.Segments, rs)
	}
	return route, rows.Err()
}

// ListRoutes returns all routes, newest first, without their segments.
func (s *Postgres) ListRoutes(ctx context.Context) ([]streetcover.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, created_at, start_lat, start_lon, total_meters, duplicated_meters
		FROM routes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: ListRoutes: %w", err)
	}
	defer rows.Close()

	routes := []streetcover.Route{}
	for rows.Next() {
		var route streetcover.Route
		var rawID string
		if err := rows.Scan(&rawID, &route.Name, &route.CreatedAt, &route.Start.Lat,
			&route.Start.Lon, &route.TotalMeters, &route.DuplicatedMeters); err != nil {
			return nil, fmt.Errorf("storage: ListRoutes: scan: %w", err)
		}
		route.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("storage: ListRoutes: parse id %q: %w", rawID, err)
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// DeleteRoute removes a route; its route_segments rows cascade.
func (s *Postgres) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("storage: DeleteRoute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}
