package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func parcelFeature(id, state string, areaHa float64) *geojson.Feature {
	f := geojson.NewFeature(squareNearSydney())
	f.Properties["id"] = id
	f.Properties["state"] = state
	f.Properties["area_ha"] = areaHa
	return f
}

func TestDissolve(t *testing.T) {
	features := []*geojson.Feature{
		parcelFeature("1//DP131118", "NSW", 1.5),
		parcelFeature("2//DP131118", "NSW", 2.5),
		parcelFeature("1RP912949", "QLD", 3),
	}

	dissolved := Dissolve(features)
	if len(dissolved) != 2 {
		t.Fatalf("Dissolve produced %d features, want 2 (one per state)", len(dissolved))
	}

	nsw := dissolved[0]
	if id, _ := nsw.Properties["id"].(string); id != "NSW_dissolved" {
		t.Errorf("dissolved id = %q, want NSW_dissolved", id)
	}
	if _, ok := nsw.Geometry.(orb.MultiPolygon); !ok {
		t.Errorf("dissolved geometry type = %T, want MultiPolygon", nsw.Geometry)
	}
	if area, _ := nsw.Properties["area_ha"].(float64); area != 4 {
		t.Errorf("dissolved area_ha = %v, want summed 4", area)
	}
	if count, _ := nsw.Properties["feature_count"].(int); count != 2 {
		t.Errorf("feature_count = %v, want 2", nsw.Properties["feature_count"])
	}
	if ids, _ := nsw.Properties["original_ids"].([]string); len(ids) != 2 {
		t.Errorf("original_ids = %v, want both source ids", nsw.Properties["original_ids"])
	}

	if id, _ := dissolved[1].Properties["id"].(string); id != "QLD_dissolved" {
		t.Errorf("second dissolved id = %q, want QLD_dissolved", id)
	}
}

func TestDissolveSkipsNonPolygonal(t *testing.T) {
	point := geojson.NewFeature(orb.Point{151, -33})
	point.Properties["state"] = "NSW"

	if got := Dissolve([]*geojson.Feature{point}); len(got) != 0 {
		t.Errorf("Dissolve of a point produced %d features, want 0", len(got))
	}
	if got := Dissolve(nil); got != nil {
		t.Errorf("Dissolve(nil) = %v, want nil", got)
	}
}

func TestDissolveCapsOriginalIDs(t *testing.T) {
	var features []*geojson.Feature
	for i := 0; i < 25; i++ {
		features = append(features, parcelFeature("id", "NSW", 1))
	}

	dissolved := Dissolve(features)
	if len(dissolved) != 1 {
		t.Fatalf("Dissolve produced %d features, want 1", len(dissolved))
	}
	if ids, _ := dissolved[0].Properties["original_ids"].([]string); len(ids) != 10 {
		t.Errorf("original_ids length = %d, want capped at 10", len(ids))
	}
	if count, _ := dissolved[0].Properties["feature_count"].(int); count != 25 {
		t.Errorf("feature_count = %v, want 25", dissolved[0].Properties["feature_count"])
	}
}

func TestSimplify(t *testing.T) {
	// A ring with redundant collinear vertices that Douglas-Peucker
	// should remove.
	poly := orb.Polygon{{
		{0, 0}, {0.5, 0.0001}, {1, 0}, {1, 0.5}, {1, 1}, {0, 1}, {0, 0},
	}}
	f := geojson.NewFeature(poly)
	f.Properties["id"] = "x"

	out := Simplify([]*geojson.Feature{f}, 0.01)
	if len(out) != 1 {
		t.Fatalf("Simplify returned %d features, want 1", len(out))
	}
	simplified, ok := out[0].Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("simplified geometry type = %T, want Polygon", out[0].Geometry)
	}
	if len(simplified[0]) >= len(poly[0]) {
		t.Errorf("simplified ring has %d vertices, want fewer than %d", len(simplified[0]), len(poly[0]))
	}
	if id, _ := out[0].Properties["id"].(string); id != "x" {
		t.Error("Simplify dropped properties")
	}

	// The input feature's geometry must be untouched.
	if len(poly[0]) != 7 {
		t.Error("Simplify mutated the input geometry")
	}
}

func TestSimplifyNoToleranceIsIdentity(t *testing.T) {
	f := geojson.NewFeature(squareNearSydney())
	in := []*geojson.Feature{f}
	if out := Simplify(in, 0); len(out) != 1 || out[0] != f {
		t.Error("Simplify with zero tolerance should return the input untouched")
	}
}

func TestBounds(t *testing.T) {
	a := geojson.NewFeature(orb.Polygon{{{150, -34}, {151, -34}, {151, -33}, {150, -33}, {150, -34}}})
	b := geojson.NewFeature(orb.Point{153, -27})

	got := Bounds([]*geojson.Feature{a, b})
	want := []float64{150, -34, 153, -27}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bounds = %v, want %v", got, want)
		}
	}

	if got := Bounds(nil); got[0] != 0 || got[2] != 0 {
		t.Errorf("Bounds(nil) = %v, want zeros", got)
	}
}
