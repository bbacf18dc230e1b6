package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/database"
)

// PointSource provides the geocoded block positions grouped into town
// boundaries. *database.Database implements it.
type PointSource interface {
	GetTownBlockCoordinates() ([]database.TownPoint, error)
}

// Builder turns geocoded block positions into per-town boundary polygons
// for the heatmap front-end.
type Builder struct {
	source PointSource
	logger *logrus.Logger
}

func NewBuilder(source PointSource, logger *logrus.Logger) *Builder {
	return &Builder{source: source, logger: logger}
}

// TownBoundaries returns one GeoJSON feature per town: the convex hull of
// its geocoded blocks plus the centroid. Towns with fewer than three
// distinct points cannot form a polygon and are skipped.
func (b *Builder) TownBoundaries() (*geojson.FeatureCollection, error) {
	points, err := b.source.GetTownBlockCoordinates()
	if err != nil {
		return nil, err
	}

	byTown := make(map[string][]orb.Point)
	for _, p := range points {
		byTown[p.TownName] = append(byTown[p.TownName], orb.Point{p.Longitude, p.Latitude})
	}

	towns := make([]string, 0, len(byTown))
	for town := range byTown {
		towns = append(towns, town)
	}
	sort.Strings(towns)

	fc := geojson.NewFeatureCollection()
	for _, town := range towns {
		pts := dedupe(byTown[town])
		hull := convexHull(pts)
		if hull == nil {
			b.logger.WithField("town", town).Warn("Not enough points for a boundary")
			continue
		}

		feature := geojson.NewFeature(orb.Polygon{hull})
		center := centroid(pts)
		feature.Properties = geojson.Properties{
			"town":        town,
			"point_count": len(pts),
			"centroid":    []float64{center[1], center[0]},
		}
		fc.Append(feature)
	}
	return fc, nil
}

func dedupe(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]bool, len(points))
	out := points[:0]
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func centroid(points []orb.Point) orb.Point {
	var c orb.Point
	for _, p := range points {
		c[0] += p[0]
		c[1] += p[1]
	}
	n := float64(len(points))
	return orb.Point{c[0] / n, c[1] / n}
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// convexHull is the monotone chain construction. The returned ring is
// closed and counterclockwise; nil when fewer than three distinct points
// exist.
func convexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	var lower []orb.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []orb.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Collinear input collapses to a segment.
	if len(lower)+len(upper) <= 4 {
		return nil
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	hull = append(hull, hull[0])
	return orb.Ring(hull)
}
