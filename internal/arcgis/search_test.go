package arcgis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cadastral-export/internal/models"
)

func TestSanitizeSearchTerm(t *testing.T) {
	tests := []struct{ in, want string }{
		{"smith street", "SMITH STREET"},
		{"  1//DP131118  ", "1//DP131118"},
		{"rob'; DROP TABLE--", "ROB DROP TABLE--"},
		{"a    b\tc", "A B C"},
		{strings.Repeat("A", 150), strings.Repeat("A", 100)},
		{"%%%", ""},
	}
	for _, tt := range tests {
		if got := sanitizeSearchTerm(tt.in); got != tt.want {
			t.Errorf("sanitizeSearchTerm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchWhereCanonicalFastPath(t *testing.T) {
	where := searchWhere("13/2//DP1242624", fieldMappings[models.NSW])

	for _, want := range []string{
		"lotnumber = '13'",
		"sectionnumber = '2'",
		"plannumber = '1242624'",
		"planlabel LIKE 'DP%'",
	} {
		if !strings.Contains(where, want) {
			t.Errorf("fast-path where missing %q: %s", want, where)
		}
	}
	if strings.Contains(where, "LIKE '%") {
		t.Errorf("fast-path where should not wildcard-match: %s", where)
	}
}

func TestSearchWhereWildcard(t *testing.T) {
	where := searchWhere("SMITH STREET", fieldMappings[models.NSW])
	want := "(lotidstring LIKE '%SMITH%STREET%' OR planlabel LIKE '%SMITH%STREET%')"
	if where != want {
		t.Errorf("wildcard where = %q, want %q", where, want)
	}
}

func TestSearchParcelsValidation(t *testing.T) {
	c := NewClient(0, 0)
	ctx := context.Background()

	if _, err := c.SearchParcels(ctx, models.QLD, "1RP912949", 1, 20); err == nil {
		t.Error("SearchParcels accepted a non-NSW state")
	}
	if _, err := c.SearchParcels(ctx, models.NSW, "x", 0, 20); err == nil {
		t.Error("SearchParcels accepted page 0")
	}
	if _, err := c.SearchParcels(ctx, models.NSW, "x", 1, 101); err == nil {
		t.Error("SearchParcels accepted oversized pageSize")
	}
	if _, err := c.SearchParcels(ctx, models.NSW, "%%%", 1, 20); err == nil {
		t.Error("SearchParcels accepted a term that sanitizes to empty")
	}
}

func TestSearchParcels(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, `{"features":[
			{"attributes":{"lotidstring":"1/DP131118","lotnumber":"1","planlabel":"DP131118"}},
			{"attributes":{"lotidstring":"","planlabel":"ignored"}},
			{"attributes":{"lotidstring":"2//DP131118","lotnumber":"2","planlabel":""}}
		]}`)
	}))
	defer server.Close()

	c, _ := newTestClient(server, 50)

	results, err := c.SearchParcels(context.Background(), models.NSW, "DP131118", 2, 10)
	if err != nil {
		t.Fatalf("SearchParcels error = %v", err)
	}

	for _, want := range []string{"resultOffset=10", "resultRecordCount=10", "returnGeometry=false", "f=json"} {
		if !strings.Contains(query, want) {
			t.Errorf("request query missing %q: %s", want, query)
		}
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (id-less row dropped)", len(results))
	}
	if results[0].ID != "1//DP131118" {
		t.Errorf("results[0].ID = %q, want re-derived canonical 1//DP131118", results[0].ID)
	}
	if results[0].Plan != "DP131118" || results[0].Lot != "1" {
		t.Errorf("results[0] components = lot %q plan %q", results[0].Lot, results[0].Plan)
	}
	if results[1].Label != "2//DP131118" {
		t.Errorf("results[1].Label = %q, want fallback to id", results[1].Label)
	}
}

func TestSearchParcelsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":400,"message":"Unable to complete operation","details":["Invalid where clause"]}}`)
	}))
	defer server.Close()

	c, _ := newTestClient(server, 50)

	_, err := c.SearchParcels(context.Background(), models.NSW, "DP131118", 1, 20)
	if err == nil {
		t.Fatal("SearchParcels swallowed an upstream error payload")
	}

	var apiErr *ArcGISError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *ArcGISError", err)
	}
	if apiErr.Code != 400 {
		t.Errorf("ArcGISError.Code = %d, want 400", apiErr.Code)
	}
	if len(apiErr.Details) != 1 {
		t.Errorf("ArcGISError.Details = %v, want one entry", apiErr.Details)
	}
}
