// Package geo holds geometry helpers shared by the query pipeline and
// the export writers.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// AreaHectares computes the geodesic area of a polygonal geometry on
// the WGS84 ellipsoid, in hectares. Returns ok=false for
// non-polygonal or missing geometry.
func AreaHectares(g orb.Geometry) (float64, bool) {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		areaM2 := math.Abs(orbgeo.Area(g))
		return areaM2 / 10000, true
	}
	return 0, false
}

// Centroid returns the vertex-average centroid of a polygon's exterior
// ring, for placing export labels.
func Centroid(g orb.Geometry) (orb.Point, bool) {
	var ring orb.Ring
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return orb.Point{}, false
		}
		ring = geom[0]
	case orb.MultiPolygon:
		if len(geom) == 0 || len(geom[0]) == 0 {
			return orb.Point{}, false
		}
		ring = geom[0][0]
	case orb.Point:
		return geom, true
	default:
		return orb.Point{}, false
	}

	if len(ring) == 0 {
		return orb.Point{}, false
	}
	var sumLng, sumLat float64
	for _, pt := range ring {
		sumLng += pt[0]
		sumLat += pt[1]
	}
	n := float64(len(ring))
	return orb.Point{sumLng / n, sumLat / n}, true
}
