package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/paulmach/orb/geojson"

	"cadastral-export/internal/arcgis"
	"cadastral-export/internal/cache"
	"cadastral-export/internal/config"
	"cadastral-export/internal/db"
	"cadastral-export/internal/exports"
	"cadastral-export/internal/geo"
	"cadastral-export/internal/models"
	"cadastral-export/internal/parsers"
)

const maxQueryIDs = 1000

// Handlers contains HTTP handlers and their dependencies
type Handlers struct {
	cfg         *config.Config
	db          *db.DB
	client      *arcgis.Client
	searchCache *cache.ResponseCache
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cfg *config.Config, database *db.DB) *Handlers {
	return &Handlers{
		cfg:         cfg,
		db:          database,
		client:      arcgis.NewClient(cfg.ArcGISTimeout, cfg.MaxIDsPerChunk),
		searchCache: cache.New(256, cfg.CacheTTL),
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{
		Error:     message,
		Detail:    detail,
		RequestID: requestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Healthz handles GET /healthz
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type parseRequest struct {
	State   string `json:"state"`
	RawText string `json:"rawText"`
}

type parseResponse struct {
	Valid     []models.ParsedParcel   `json:"valid"`
	Malformed []models.MalformedEntry `json:"malformed"`
}

// Parse handles POST /api/parse
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	state, err := models.ParseState(req.State)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	valid, malformed, err := parsers.Parse(state, req.RawText)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	log.Printf("[%s] Parsed %s input: %d valid, %d malformed", requestID(r.Context()), state, len(valid), len(malformed))

	if valid == nil {
		valid = []models.ParsedParcel{}
	}
	if malformed == nil {
		malformed = []models.MalformedEntry{}
	}
	writeJSON(w, parseResponse{Valid: valid, Malformed: malformed})
}

type queryOptions struct {
	SimplifyTol float64 `json:"simplifyTol"`
}

type queryRequest struct {
	States  []string      `json:"states"`
	IDs     []string      `json:"ids"`
	AOI     []float64     `json:"aoi"`
	Options *queryOptions `json:"options"`
}

// queryCacheKey hashes a canonicalized request shape: states and ids
// are sorted so reordered but equivalent queries share a cache entry.
func queryCacheKey(states []models.State, req queryRequest) string {
	sortedStates := make([]string, len(states))
	for i, s := range states {
		sortedStates[i] = string(s)
	}
	sort.Strings(sortedStates)

	sortedIDs := append([]string(nil), req.IDs...)
	sort.Strings(sortedIDs)

	return cache.Key(queryRequest{
		States:  sortedStates,
		IDs:     sortedIDs,
		AOI:     req.AOI,
		Options: req.Options,
	})
}

// Query handles POST /api/query
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "no parcel IDs provided", "")
		return
	}
	if len(req.IDs) > maxQueryIDs {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("too many parcel IDs (max %d)", maxQueryIDs), "")
		return
	}
	if len(req.AOI) != 0 && len(req.AOI) != 4 {
		writeError(w, r, http.StatusBadRequest, "aoi must be [minx, miny, maxx, maxy]", "")
		return
	}

	states := make([]models.State, 0, len(req.States))
	for _, s := range req.States {
		state, err := models.ParseState(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error(), "")
			return
		}
		states = append(states, state)
	}
	if len(states) == 0 {
		writeError(w, r, http.StatusBadRequest, "no states provided", "")
		return
	}

	cacheKey := queryCacheKey(states, req)
	if payload, ok := h.db.GetCached(cacheKey); ok {
		log.Printf("[%s] Returning cached query result", requestID(r.Context()))
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	idsByState := make(map[models.State][]string, len(states))
	for _, state := range states {
		idsByState[state] = req.IDs
	}

	features := arcgis.QueryBulk(r.Context(), h.client, idsByState, req.AOI)
	if req.Options != nil && req.Options.SimplifyTol > 0 {
		features = geo.Simplify(features, req.Options.SimplifyTol)
	}

	fc := geojson.NewFeatureCollection()
	fc.Features = features
	if len(features) > 0 {
		fc.BBox = geojson.BBox(geo.Bounds(features))
	}
	payload, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to encode features", err.Error())
		return
	}

	if err := h.db.SetCached(cacheKey, payload, h.cfg.CacheTTL); err != nil {
		log.Printf("[%s] Failed to cache query result: %v", requestID(r.Context()), err)
	}

	log.Printf("[%s] Query completed: %d features returned", requestID(r.Context()), len(features))
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

type searchRequest struct {
	State    string `json:"state"`
	Term     string `json:"term"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Search handles POST /api/search
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	state, err := models.ParseState(req.State)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	if payload, ok := h.searchCache.Get(req); ok {
		log.Printf("[%s] Returning cached search result", requestID(r.Context()))
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	results, err := h.client.SearchParcels(r.Context(), state, req.Term, req.Page, req.PageSize)
	if err != nil {
		var arcErr *arcgis.ArcGISError
		if errors.As(err, &arcErr) {
			writeError(w, r, http.StatusBadGateway, arcErr.Error(), "")
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	payload, err := json.Marshal(results)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to encode results", err.Error())
		return
	}
	h.searchCache.Set(req, payload)

	log.Printf("[%s] Search completed: %d results", requestID(r.Context()), len(results))
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

type exportRequest struct {
	Features []json.RawMessage `json:"features"`
	FileName string            `json:"fileName"`
	Dissolve bool              `json:"dissolve"`
}

func (req *exportRequest) decodeFeatures() ([]*geojson.Feature, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("no features to export")
	}
	features := make([]*geojson.Feature, 0, len(req.Features))
	for _, raw := range req.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid feature: %w", err)
		}
		features = append(features, f)
	}
	if req.Dissolve {
		features = geo.Dissolve(features)
	}
	return features, nil
}

func exportFilename(requested, extension string) string {
	if name := exports.SanitizeFilename(requested, extension); name != "" {
		return name
	}
	return "parcels-" + time.Now().Format("20060102") + extension
}

// ExportKML handles POST /api/export/kml
func (h *Handlers) ExportKML(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	features, err := req.decodeFeatures()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	filename := exportFilename(req.FileName, ".kml")
	kml, err := exports.ExportKML(features, filename)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "KML export failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", exports.ContentDisposition(filename))
	w.Write([]byte(kml))
}

// ExportKMZ handles POST /api/export/kmz
func (h *Handlers) ExportKMZ(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	features, err := req.decodeFeatures()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	filename := exportFilename(req.FileName, ".kmz")
	kmz, err := exports.ExportKMZ(features, filename)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "KMZ export failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kmz")
	w.Header().Set("Content-Disposition", exports.ContentDisposition(filename))
	w.Write(kmz)
}

// ExportGeoJSON handles POST /api/export/geojson
func (h *Handlers) ExportGeoJSON(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	features, err := req.decodeFeatures()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	filename := exportFilename(req.FileName, ".geojson")
	data, err := exports.ExportGeoJSON(features)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "GeoJSON export failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", exports.ContentDisposition(filename))
	w.Write(data)
}
