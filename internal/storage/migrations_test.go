package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{
		"001_road_segments.sql",
		"002_routes.sql",
		"003_route_segments.sql",
	}, names)

	for _, name := range names {
		sql, err := migrationFiles.ReadFile("migrations/" + name)
		require.NoError(t, err)
		assert.NotEmpty(t, sql)
	}
}

func TestRouteSegmentsSchemaAllowsRepeatedSegments(t *testing.T) {
	sql, err := migrationFiles.ReadFile("migrations/003_route_segments.sql")
	require.NoError(t, err)

	// a route may cover one segment many times, so the key must be the
	// position within the route, not the segment
	assert.Contains(t, string(sql), "PRIMARY KEY (route_id, segment_order)")
	assert.Contains(t, string(sql), "ON DELETE CASCADE")
	assert.Contains(t, string(sql), "CHECK (segment_order >= 1)")
}
