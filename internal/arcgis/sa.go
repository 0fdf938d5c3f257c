package arcgis

import (
	"context"
	"log"

	"github.com/paulmach/orb/geojson"

	"cadastral-export/internal/models"
	"cadastral-export/internal/parsers"
)

// SA identifiers live in three separate server columns, one per
// scheme, so the id set is split by scheme and each group queried
// against its own column before chunking.

var saSchemeFields = map[parsers.SAScheme]string{
	parsers.SASchemeTitle:  saTitleField,
	parsers.SASchemeDCDB:   saDCDBField,
	parsers.SASchemeParcel: saParcelField,
}

// saSchemeOrder fixes the query order so the cross-scheme merge below
// is deterministic.
var saSchemeOrder = []parsers.SAScheme{parsers.SASchemeTitle, parsers.SASchemeParcel, parsers.SASchemeDCDB}

func (c *Client) querySA(ctx context.Context, ids []string, bbox []float64) ([]*geojson.Feature, error) {
	groups := make(map[parsers.SAScheme][]string)
	for _, id := range ids {
		scheme, value, err := parsers.ClassifySA(id)
		if err != nil {
			log.Printf("Skipping unclassifiable SA identifier %q: %v", id, err)
			continue
		}
		groups[scheme] = append(groups[scheme], value)
	}

	// Merge across schemes keyed on the post-processed canonical id.
	// Later scheme results overwrite earlier ones sharing a key
	// (last-write-wins, matching long-standing behaviour).
	merged := make(map[string]*geojson.Feature)
	var order []string

	for _, scheme := range saSchemeOrder {
		values := groups[scheme]
		if len(values) == 0 {
			continue
		}
		for _, f := range c.queryChunks(ctx, models.SA, saSchemeFields[scheme], values, bbox) {
			id, _ := f.Properties["id"].(string)
			if _, seen := merged[id]; !seen {
				order = append(order, id)
			}
			merged[id] = f
		}
	}

	features := make([]*geojson.Feature, 0, len(order))
	for _, id := range order {
		features = append(features, merged[id])
	}
	return features, nil
}
