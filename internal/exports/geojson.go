package exports

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"cadastral-export/internal/geo"
)

// ExportGeoJSON renders features as a GeoJSON FeatureCollection with
// an overall bbox member.
func ExportGeoJSON(features []*geojson.Feature) ([]byte, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("no features to export")
	}
	fc := geojson.NewFeatureCollection()
	fc.Features = features
	fc.BBox = geojson.BBox(geo.Bounds(features))
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding feature collection: %w", err)
	}
	return data, nil
}
