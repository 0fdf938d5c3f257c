package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"cadastral-export/internal/models"
)

// QLD lotplans concatenate a lot number with a plan prefix (1-4
// letters) and plan number, e.g. 13RP912949. Users supply them with
// spaces, slashes, or sentence phrasing ("Lot 1 on RP912949").

var (
	qldLotPlanSpaced  = regexp.MustCompile(`^([0-9]+[A-Z]?) ([A-Z]{1,4}) ?([0-9]+)$`)
	qldLotPlanCompact = regexp.MustCompile(`^([0-9]+[A-Z]?)([A-Z]{1,4})([0-9]+)$`)
	qldPlanOnly       = regexp.MustCompile(`^([A-Z]{1,4}) ?([0-9]+)$`)
	qldLotOnly        = regexp.MustCompile(`^[0-9]+[A-Z]?$`)

	qldSeparators = regexp.MustCompile(`[\\/\-]+`)
	qldPunct      = regexp.MustCompile(`[,\t]+`)
)

var qldNoiseTokens = map[string]bool{
	"LOT":    true,
	"LOTS":   true,
	"PLAN":   true,
	"ON":     true,
	"OF":     true,
	"NUMBER": true,
	"NO":     true,
	"NO.":    true,
	"STAGE":  true,
	"UNIT":   true,
}

// qldNormalizeFragment reduces a fragment to space-separated tokens
// with separators unified and noise words removed.
func qldNormalizeFragment(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}
	cleaned = qldSeparators.ReplaceAllString(cleaned, " ")
	cleaned = qldPunct.ReplaceAllString(cleaned, " ")
	cleaned = nswWhitespace.ReplaceAllString(cleaned, " ")

	var kept []string
	for _, tok := range strings.Split(cleaned, " ") {
		if tok != "" && !qldNoiseTokens[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeQLD converts one free-text QLD lotplan reference into its
// canonical {LOT}{PREFIX}{NUMBER} form. Matchers are tried in a fixed
// order: spaced lot+plan, compact, pairwise token recombination, and
// finally pairing a trailing plan-shaped token with the preceding lot.
func NormalizeQLD(raw string) (models.ParsedParcel, error) {
	parseErr := fmt.Errorf("expected formats like '1RP912949', '1 RP 912949', or 'Lot 1 on RP912949'")

	normalized := qldNormalizeFragment(raw)
	if normalized == "" {
		return models.ParsedParcel{}, parseErr
	}

	m := qldLotPlanSpaced.FindStringSubmatch(normalized)
	if m == nil {
		m = qldLotPlanCompact.FindStringSubmatch(strings.ReplaceAll(normalized, " ", ""))
	}

	parts := strings.Split(normalized, " ")
	if m == nil && len(parts) >= 2 {
		// Pairwise recombination handles inputs whose separators left
		// three or more tokens behind.
		for i := 0; i < len(parts)-1 && m == nil; i++ {
			m = qldLotPlanSpaced.FindStringSubmatch(parts[i] + " " + parts[i+1])
		}
		if m == nil && len(parts) >= 3 {
			m = qldLotPlanSpaced.FindStringSubmatch(parts[0] + " " + strings.Join(parts[1:], " "))
		}
	}

	if m == nil {
		// Fallback: a plan-shaped token preceded by a bare lot token.
		for i, part := range parts {
			pm := qldPlanOnly.FindStringSubmatch(part)
			if pm == nil || i == 0 {
				continue
			}
			if lot := parts[i-1]; qldLotOnly.MatchString(lot) {
				return qldParcel(raw, lot, pm[1], pm[2]), nil
			}
		}
		return models.ParsedParcel{}, parseErr
	}

	return qldParcel(raw, m[1], m[2], m[3]), nil
}

func qldParcel(raw, lot, prefix, number string) models.ParsedParcel {
	plan := prefix + number
	return models.ParsedParcel{
		ID:    lot + plan,
		State: models.QLD,
		Raw:   raw,
		Lot:   lot,
		Plan:  plan,
	}
}

// ParseQLD parses free-form QLD lotplan input. Fragments split on
// newlines, semicolons, commas, ampersands, and the word "and";
// duplicate canonical ids within one call are silently collapsed.
func ParseQLD(rawText string) ([]models.ParsedParcel, []models.MalformedEntry) {
	var valid []models.ParsedParcel
	var malformed []models.MalformedEntry
	seen := make(map[string]bool)

	for _, fragment := range splitProseFragments(rawText) {
		parcel, err := NormalizeQLD(fragment)
		if err != nil {
			malformed = append(malformed, models.MalformedEntry{Raw: fragment, Error: err.Error()})
			continue
		}
		if seen[parcel.ID] {
			continue
		}
		seen[parcel.ID] = true
		valid = append(valid, parcel)
	}

	return valid, malformed
}
