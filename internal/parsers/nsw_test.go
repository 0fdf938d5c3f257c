package parsers

import (
	"strings"
	"testing"

	"cadastral-export/internal/models"
)

func TestNormalizeNSW(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{name: "canonical", input: "1//DP131118", wantID: "1//DP131118"},
		{name: "canonical with section", input: "13/2//DP1242624", wantID: "13/2//DP1242624"},
		{name: "single slash", input: "1/DP131118", wantID: "1//DP131118"},
		{name: "single slash with section", input: "13/2/DP1242624", wantID: "13/2//DP1242624"},
		{name: "sentence form", input: "LOT 13 SEC 2 DP1242624", wantID: "13/2//DP1242624"},
		{name: "sentence with SECTION word", input: "Lot 13 Section 2 DP1242624", wantID: "13/2//DP1242624"},
		{name: "sentence no section", input: "LOT 1 DP131118", wantID: "1//DP131118"},
		{name: "split plan tokens", input: "lot 2 DP 30493", wantID: "2//DP30493"},
		{name: "noisy separators", input: "1/ /DP131118", wantID: "1//DP131118"},
		{name: "backslash separator", input: `1\\DP131118`, wantID: "1//DP131118"},
		{name: "lowercase", input: "lot 7 sp85862", wantID: "7//SP85862"},
		{name: "leading whitespace", input: "   1//DP131118  ", wantID: "1//DP131118"},
		{name: "empty", input: "", wantErr: true},
		{name: "no plan", input: "bad-entry", wantErr: true},
		{name: "lot only", input: "LOT 4", wantErr: true},
		{name: "plan only", input: "DP131118", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeNSW(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeNSW(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.ID != tt.wantID {
				t.Errorf("NormalizeNSW(%q).ID = %q, want %q", tt.input, got.ID, tt.wantID)
			}
			if got.State != models.NSW {
				t.Errorf("NormalizeNSW(%q).State = %q, want NSW", tt.input, got.State)
			}
			if got.Raw != tt.input {
				t.Errorf("NormalizeNSW(%q).Raw = %q, want original input", tt.input, got.Raw)
			}
		})
	}
}

func TestNormalizeNSWIdempotent(t *testing.T) {
	inputs := []string{"1//DP131118", "LOT 13 SEC 2 DP1242624", "2/DP30493", "7//SP85862"}
	for _, input := range inputs {
		first, err := NormalizeNSW(input)
		if err != nil {
			t.Fatalf("NormalizeNSW(%q) error = %v", input, err)
		}
		second, err := NormalizeNSW(first.ID)
		if err != nil {
			t.Fatalf("NormalizeNSW(%q) error = %v", first.ID, err)
		}
		if second.ID != first.ID {
			t.Errorf("normalization not idempotent: %q -> %q -> %q", input, first.ID, second.ID)
		}
	}
}

func TestMatchNSWCanonical(t *testing.T) {
	if p, ok := MatchNSWCanonical("13/2//DP1242624"); !ok {
		t.Fatal("MatchNSWCanonical rejected a canonical id")
	} else if p.Lot != "13" || p.Section != "2" || p.Plan != "DP1242624" {
		t.Errorf("MatchNSWCanonical components = %q/%q/%q", p.Lot, p.Section, p.Plan)
	}

	for _, term := range []string{"LOT 1 DP131118", "1/DP131118", "smith street"} {
		if _, ok := MatchNSWCanonical(term); ok {
			t.Errorf("MatchNSWCanonical(%q) = true, want false", term)
		}
	}
}

func TestExpandNSWRange(t *testing.T) {
	parcels, isRange, err := expandNSWRange("1-3//DP131118")
	if !isRange || err != nil {
		t.Fatalf("expandNSWRange: isRange=%v err=%v", isRange, err)
	}
	want := []string{"1//DP131118", "2//DP131118", "3//DP131118"}
	if len(parcels) != len(want) {
		t.Fatalf("expandNSWRange returned %d parcels, want %d", len(parcels), len(want))
	}
	for i, id := range want {
		if parcels[i].ID != id {
			t.Errorf("parcel %d id = %q, want %q", i, parcels[i].ID, id)
		}
	}

	if _, isRange, err := expandNSWRange("1-250//DP1"); !isRange || err == nil {
		t.Errorf("oversized range: isRange=%v err=%v, want range error", isRange, err)
	}
	if _, isRange, err := expandNSWRange("5-3//DP1"); !isRange || err == nil {
		t.Errorf("inverted range: isRange=%v err=%v, want range error", isRange, err)
	}
	if _, isRange, _ := expandNSWRange("1//DP131118"); isRange {
		t.Error("non-range input treated as a range")
	}
}

func TestParseNSW(t *testing.T) {
	valid, malformed := ParseNSW("1//DP131118\nbad-entry\n2-3//DP131118")

	wantValid := []string{"1//DP131118", "2//DP131118", "3//DP131118"}
	if len(valid) != len(wantValid) {
		t.Fatalf("ParseNSW valid count = %d, want %d", len(valid), len(wantValid))
	}
	for i, id := range wantValid {
		if valid[i].ID != id {
			t.Errorf("valid[%d].ID = %q, want %q", i, valid[i].ID, id)
		}
	}

	if len(malformed) != 1 {
		t.Fatalf("ParseNSW malformed count = %d, want 1", len(malformed))
	}
	if malformed[0].Raw != "bad-entry" {
		t.Errorf("malformed[0].Raw = %q, want %q", malformed[0].Raw, "bad-entry")
	}
	if malformed[0].Error == "" {
		t.Error("malformed entry has empty error message")
	}
}

func TestParseNSWLineAccounting(t *testing.T) {
	input := "1//DP131118\n\n  \nnope\n2//DP131118\n???"
	valid, malformed := ParseNSW(input)

	lines := 0
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if len(valid)+len(malformed) != lines {
		t.Errorf("valid(%d) + malformed(%d) != non-blank lines(%d)", len(valid), len(malformed), lines)
	}
}
