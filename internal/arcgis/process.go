package arcgis

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"

	"cadastral-export/internal/geo"
	"cadastral-export/internal/models"
	"cadastral-export/internal/parsers"
)

// processFeature standardizes one raw server feature: re-derives the
// canonical identifier from server attributes, computes geodesic area,
// and flattens the remaining attributes into the properties bag.
// Returns nil when the feature has no geometry.
func processFeature(f *geojson.Feature, state models.State, mapping fieldMapping) *geojson.Feature {
	if f == nil || f.Geometry == nil {
		return nil
	}

	rawID := stringAttr(f.Properties, mapping.IDField)
	if rawID == "" {
		rawID = "unknown"
	}

	id := canonicalFromAttributes(state, rawID, f.Properties)

	name := stringAttr(f.Properties, mapping.NameField)
	if name == "" {
		name = fmt.Sprintf("%s Parcel %s", state, id)
	}

	// Area failures are non-fatal; the property stays null.
	var areaHa interface{}
	if ha, ok := geo.AreaHectares(f.Geometry); ok {
		areaHa = ha
	}

	out := geojson.NewFeature(f.Geometry)
	for k, v := range f.Properties {
		if v != nil {
			out.Properties[k] = v
		}
	}
	out.Properties["id"] = id
	out.Properties["state"] = string(state)
	out.Properties["name"] = name
	out.Properties["area_ha"] = areaHa

	return out
}

// canonicalFromAttributes re-runs the state's normalizer over the
// server's own spelling of the identifier, so that round trips match
// the query-time canonical form despite upstream casing and spacing
// quirks.
func canonicalFromAttributes(state models.State, rawID string, props geojson.Properties) string {
	switch state {
	case models.NSW:
		if p, err := parsers.NormalizeNSW(rawID); err == nil {
			return p.ID
		}
	case models.QLD:
		if p, err := parsers.NormalizeQLD(rawID); err == nil {
			return p.ID
		}
		return strings.ToUpper(strings.ReplaceAll(rawID, " ", ""))
	case models.VIC:
		if p, err := parsers.NormalizeVIC(rawID); err == nil {
			return p.ID
		}
	case models.SA:
		// The server may populate any of the three scheme columns;
		// prefer DCDB, then parcel id, then title reference.
		for _, field := range []string{saDCDBField, saParcelField, saTitleField} {
			if v := stringAttr(props, field); v != "" {
				if p, err := parsers.NormalizeSA(v); err == nil {
					return p.ID
				}
				return strings.ToUpper(v)
			}
		}
	}
	return strings.ToUpper(rawID)
}

func stringAttr(props geojson.Properties, key string) string {
	if key == "" {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	}
	return ""
}
