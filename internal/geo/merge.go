package geo

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
)

// Dissolve merges features into one multipolygon feature per state to
// reduce export complexity. Non-polygonal features are dropped.
func Dissolve(features []*geojson.Feature) []*geojson.Feature {
	if len(features) == 0 {
		return nil
	}

	type group struct {
		polygons orb.MultiPolygon
		areaHa   float64
		ids      []string
		count    int
	}
	groups := make(map[string]*group)
	var order []string

	for _, f := range features {
		state, _ := f.Properties["state"].(string)
		g, ok := groups[state]
		if !ok {
			g = &group{}
			groups[state] = g
			order = append(order, state)
		}

		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			g.polygons = append(g.polygons, geom)
		case orb.MultiPolygon:
			g.polygons = append(g.polygons, geom...)
		default:
			log.Printf("Dissolve skipping non-polygonal geometry %T", f.Geometry)
			continue
		}

		g.count++
		if ha, ok := f.Properties["area_ha"].(float64); ok {
			g.areaHa += ha
		}
		if id, ok := f.Properties["id"].(string); ok && len(g.ids) < 10 {
			g.ids = append(g.ids, id)
		}
	}

	var dissolved []*geojson.Feature
	for _, state := range order {
		g := groups[state]
		if len(g.polygons) == 0 {
			continue
		}
		f := geojson.NewFeature(g.polygons)
		f.Properties["id"] = state + "_dissolved"
		f.Properties["state"] = state
		f.Properties["name"] = fmt.Sprintf("%s Cadastral Parcels (%d merged)", state, g.count)
		f.Properties["area_ha"] = g.areaHa
		f.Properties["feature_count"] = g.count
		f.Properties["original_ids"] = g.ids
		dissolved = append(dissolved, f)
	}
	return dissolved
}

// Simplify reduces geometry detail with the caller-supplied tolerance.
// Features whose geometry is missing are passed through untouched.
func Simplify(features []*geojson.Feature, tolerance float64) []*geojson.Feature {
	if len(features) == 0 || tolerance <= 0 {
		return features
	}

	simplifier := simplify.DouglasPeucker(tolerance)
	out := make([]*geojson.Feature, 0, len(features))
	for _, f := range features {
		if f.Geometry == nil {
			out = append(out, f)
			continue
		}
		nf := geojson.NewFeature(simplifier.Simplify(orb.Clone(f.Geometry)))
		for k, v := range f.Properties {
			nf.Properties[k] = v
		}
		out = append(out, nf)
	}
	return out
}

// Bounds computes the overall bounding box [minx, miny, maxx, maxy] of
// all feature geometries.
func Bounds(features []*geojson.Feature) []float64 {
	var bound orb.Bound
	first := true
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		if first {
			bound = f.Geometry.Bound()
			first = false
			continue
		}
		bound = bound.Union(f.Geometry.Bound())
	}
	if first {
		return []float64{0, 0, 0, 0}
	}
	return []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}
}
