package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"cadastral-export/internal/models"
	"cadastral-export/internal/parsers"
)

// Free-text parcel search. Unlike the bulk query path, an upstream
// error payload here propagates to the caller as a typed *ArcGISError:
// search is a single-shot user-facing query with no partial-success
// semantics.

const (
	maxSearchTermLen = 100
	maxSearchPage    = 100
)

var (
	searchTermAllowed = regexp.MustCompile(`[^A-Z0-9\s/\-]+`)
	searchWhitespace  = regexp.MustCompile(`\s+`)
)

// sanitizeSearchTerm uppercases, strips disallowed characters,
// collapses whitespace, and truncates the term.
func sanitizeSearchTerm(term string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(term))
	cleaned = searchTermAllowed.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(searchWhitespace.ReplaceAllString(cleaned, " "))
	if len(cleaned) > maxSearchTermLen {
		cleaned = cleaned[:maxSearchTermLen]
	}
	return cleaned
}

// searchWhere builds the WHERE clause for a sanitized term. Terms that
// already look like LOT[/SECTION]//PLAN take a structured fast path
// with equality and prefix clauses; a wildcard LIKE on a string
// containing a literal "//" would never match.
func searchWhere(term string, mapping fieldMapping) string {
	if parcel, ok := parsers.MatchNSWCanonical(term); ok {
		clauses := []string{
			fmt.Sprintf("%s = '%s'", mapping.LotField, escapeSQL(parcel.Lot)),
		}
		if parcel.Section != "" {
			clauses = append(clauses, fmt.Sprintf("%s = '%s'", mapping.SectionField, escapeSQL(parcel.Section)))
		}
		planDigits := strings.TrimLeft(parcel.Plan, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
		planPrefix := strings.TrimSuffix(parcel.Plan, planDigits)
		clauses = append(clauses,
			fmt.Sprintf("%s = '%s'", mapping.PlanField, escapeSQL(planDigits)),
			fmt.Sprintf("%s LIKE '%s%%'", mapping.NameField, escapeSQL(planPrefix)),
		)
		return strings.Join(clauses, " AND ")
	}

	like := strings.ReplaceAll(escapeSQL(term), " ", "%")
	clauses := make([]string, len(nswSearchFields))
	for i, field := range nswSearchFields {
		clauses[i] = fmt.Sprintf("%s LIKE '%%%s%%'", field, like)
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

// SearchParcels searches NSW parcels matching a free-text term,
// paginated. Other states are rejected with a usage error.
func (c *Client) SearchParcels(ctx context.Context, state models.State, term string, page, pageSize int) ([]models.SearchResult, error) {
	if state != models.NSW {
		return nil, fmt.Errorf("search is currently supported only for NSW")
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be at least 1")
	}
	if pageSize < 1 || pageSize > maxSearchPage {
		return nil, fmt.Errorf("pageSize must be between 1 and %d", maxSearchPage)
	}

	sanitized := sanitizeSearchTerm(term)
	if sanitized == "" {
		return nil, fmt.Errorf("search term is empty")
	}

	mapping := fieldMappings[state]
	outFields := strings.Join([]string{mapping.IDField, mapping.LotField, mapping.SectionField, mapping.NameField}, ",")

	params := url.Values{}
	params.Set("where", searchWhere(sanitized, mapping))
	params.Set("outFields", outFields)
	params.Set("returnGeometry", "false")
	params.Set("orderByFields", mapping.IDField)
	params.Set("resultOffset", strconv.Itoa((page-1)*pageSize))
	params.Set("resultRecordCount", strconv.Itoa(pageSize))
	params.Set("f", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", c.services[state]+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching parcels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("arcgis returned %d: %s", resp.StatusCode, string(body))
	}

	// Search uses Esri JSON rather than GeoJSON; attributes only.
	var payload struct {
		Error    *errorPayload `json:"error"`
		Features []struct {
			Attributes map[string]interface{} `json:"attributes"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if payload.Error != nil {
		return nil, payload.Error.toError()
	}

	results := make([]models.SearchResult, 0, len(payload.Features))
	for _, f := range payload.Features {
		attrs := f.Attributes
		rawID := stringAttr(attrs, mapping.IDField)
		if rawID == "" {
			continue
		}

		result := models.SearchResult{
			ID:      strings.ToUpper(rawID),
			State:   state,
			Lot:     stringAttr(attrs, mapping.LotField),
			Section: stringAttr(attrs, mapping.SectionField),
			Label:   stringAttr(attrs, mapping.NameField),
		}
		if parcel, err := parsers.NormalizeNSW(rawID); err == nil {
			result.ID = parcel.ID
			result.Lot = parcel.Lot
			result.Section = parcel.Section
			result.Plan = parcel.Plan
		}
		if result.Label == "" {
			result.Label = result.ID
		}
		results = append(results, result)
	}
	return results, nil
}
