// Package arcgis queries state government ArcGIS map services for
// cadastral parcel geometries, chunking identifier sets, retrying
// transient failures, and standardizing the returned features.
package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"cadastral-export/internal/models"
)

const (
	defaultTimeout        = 20 * time.Second
	defaultMaxIDsPerChunk = 50
)

// Client queries ArcGIS map services. It is safe for concurrent use;
// each bulk query owns its configuration for the duration of the call.
type Client struct {
	httpClient     *http.Client
	maxIDsPerChunk int
	sleep          sleepFunc
	services       map[models.State]string
}

// NewClient creates an ArcGIS client with the given per-request
// timeout and chunk size; zero values select the defaults (20s, 50).
func NewClient(timeout time.Duration, maxIDsPerChunk int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxIDsPerChunk <= 0 {
		maxIDsPerChunk = defaultMaxIDsPerChunk
	}

	services := make(map[models.State]string, len(serviceURLs))
	for state, u := range serviceURLs {
		services[state] = u
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		maxIDsPerChunk: maxIDsPerChunk,
		sleep:          sleepContext,
		services:       services,
	}
}

// escapeSQL doubles single quotes so identifiers are safe to embed in
// a WHERE clause.
func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// whereIn builds "field IN ('a','b',...)" with quoted, escaped values.
func whereIn(field string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + escapeSQL(v) + "'"
	}
	return field + " IN (" + strings.Join(quoted, ",") + ")"
}

// chunkIDs splits ids into order-preserving chunks of at most size.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// QueryFeatures retrieves parcel geometries for the given canonical
// identifiers, optionally restricted to a bounding box. Chunks that
// exhaust their retries are logged and skipped; partial results are
// expected under upstream flakiness.
func (c *Client) QueryFeatures(ctx context.Context, state models.State, ids []string, bbox []float64) ([]*geojson.Feature, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	mapping, ok := fieldMappings[state]
	if !ok {
		return nil, fmt.Errorf("no ArcGIS service configured for state %q", state)
	}

	if state == models.SA {
		return c.querySA(ctx, ids, bbox)
	}

	features := c.queryChunks(ctx, state, mapping.IDField, ids, bbox)
	return features, nil
}

// queryChunks runs the chunked WHERE ... IN query loop for one column.
// Chunk requests are issued sequentially to stay polite to the
// upstream government servers; a failed chunk never aborts its
// siblings.
func (c *Client) queryChunks(ctx context.Context, state models.State, idField string, ids []string, bbox []float64) []*geojson.Feature {
	mapping := fieldMappings[state]
	serviceURL := c.services[state]

	var all []*geojson.Feature
	for i, chunk := range chunkIDs(ids, c.maxIDsPerChunk) {
		params := url.Values{}
		params.Set("where", whereIn(idField, chunk))
		params.Set("outFields", "*")
		params.Set("returnGeometry", "true")
		params.Set("geometryPrecision", "6")
		params.Set("outSR", "4326")
		params.Set("f", "geojson")

		if len(bbox) == 4 {
			params.Set("geometry", fmt.Sprintf("%f,%f,%f,%f", bbox[0], bbox[1], bbox[2], bbox[3]))
			params.Set("geometryType", "esriGeometryEnvelope")
			params.Set("spatialRel", "esriSpatialRelIntersects")
		}

		log.Printf("Querying %s for %d %s parcels", serviceURL, len(chunk), state)

		var raw []*geojson.Feature
		label := fmt.Sprintf("%s chunk %d", state, i+1)
		err := c.withRetry(ctx, label, func() error {
			var fetchErr error
			raw, fetchErr = c.fetchFeatures(ctx, serviceURL+"/query", params)
			return fetchErr
		})
		if err != nil {
			log.Printf("Skipping %s after %d attempts: %v", label, retryAttempts, err)
			continue
		}

		for _, f := range raw {
			if processed := processFeature(f, state, mapping); processed != nil {
				all = append(all, processed)
			}
		}
	}

	log.Printf("Total retrieved: %d features for %s", len(all), state)
	return all
}

// fetchFeatures issues one GeoJSON query request. An upstream error
// payload is logged and yields zero features without an error: in the
// bulk path it is not worth retrying, the server has already answered.
func (c *Client) fetchFeatures(ctx context.Context, queryURL string, params url.Values) ([]*geojson.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching features: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("arcgis returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Error    *errorPayload     `json:"error"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if payload.Error != nil {
		log.Printf("ArcGIS API error: %v", payload.Error.toError())
		return nil, nil
	}

	features := make([]*geojson.Feature, 0, len(payload.Features))
	for _, raw := range payload.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			log.Printf("Skipping undecodable feature: %v", err)
			continue
		}
		features = append(features, f)
	}
	return features, nil
}
