package arcgis

import (
	"context"
	"log"
	"sync"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"cadastral-export/internal/models"
)

// QueryBulk fans out one QueryFeatures call per state concurrently and
// concatenates the results. A failing state is logged and contributes
// zero features; it never cancels or fails its siblings. No ordering
// is guaranteed across states.
func QueryBulk(ctx context.Context, client *Client, idsByState map[models.State][]string, bbox []float64) []*geojson.Feature {
	var mu sync.Mutex
	var all []*geojson.Feature

	var g errgroup.Group
	for state, ids := range idsByState {
		if len(ids) == 0 {
			continue
		}
		g.Go(func() error {
			features, err := client.QueryFeatures(ctx, state, ids, bbox)
			if err != nil {
				log.Printf("Query failed for %s: %v", state, err)
				return nil
			}
			mu.Lock()
			all = append(all, features...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return all
}
