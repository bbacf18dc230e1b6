package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/database"
)

type stubPointSource struct {
	points []database.TownPoint
}

func (s *stubPointSource) GetTownBlockCoordinates() ([]database.TownPoint, error) {
	return s.points, nil
}

func TestConvexHullSquare(t *testing.T) {
	points := []orb.Point{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
		// Interior point must not appear on the hull.
		{0.5, 0.5},
	}
	hull := convexHull(points)
	require.NotNil(t, hull)
	// Closed ring: 4 corners plus the repeated first point.
	assert.Len(t, hull, 5)
	assert.Equal(t, hull[0], hull[len(hull)-1])
	assert.NotContains(t, []orb.Point(hull), orb.Point{0.5, 0.5})
}

func TestConvexHullDegenerate(t *testing.T) {
	assert.Nil(t, convexHull([]orb.Point{{0, 0}, {1, 1}}))
	// Collinear points span no area.
	assert.Nil(t, convexHull([]orb.Point{{0, 0}, {1, 1}, {2, 2}}))
}

func TestTownBoundaries(t *testing.T) {
	source := &stubPointSource{
		points: []database.TownPoint{
			{TownName: "BEDOK", Latitude: 1.32, Longitude: 103.92},
			{TownName: "BEDOK", Latitude: 1.33, Longitude: 103.93},
			{TownName: "BEDOK", Latitude: 1.32, Longitude: 103.94},
			{TownName: "BEDOK", Latitude: 1.34, Longitude: 103.93},
			// Only two points: no polygon.
			{TownName: "YISHUN", Latitude: 1.43, Longitude: 103.83},
			{TownName: "YISHUN", Latitude: 1.44, Longitude: 103.84},
		},
	}
	b := NewBuilder(source, logrus.New())

	fc, err := b.TownBoundaries()
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	feature := fc.Features[0]
	assert.Equal(t, "BEDOK", feature.Properties["town"])
	assert.Equal(t, 4, feature.Properties["point_count"])

	poly, ok := feature.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	assert.GreaterOrEqual(t, len(poly[0]), 4)
}
