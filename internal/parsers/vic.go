package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"cadastral-export/internal/models"
)

// VIC standard parcel identifiers (SPIs) join a lot and plan with a
// backslash, e.g. 1\PS433970. Users also enter them with spaces or
// forward slashes; the plan token is found by scanning right-to-left.

var (
	vicPlanPattern = regexp.MustCompile(`^[A-Z]{1,4}[0-9]+[A-Z0-9]*$`)
	vicLotPattern  = regexp.MustCompile(`^[A-Z0-9]+$`)
	vicPunct       = regexp.MustCompile(`[,;]+`)
	vicLotWord     = regexp.MustCompile(`\bLOT\b`)
)

func vicParcel(raw, lot, plan string) (models.ParsedParcel, error) {
	lotClean := strings.ToUpper(strings.TrimSpace(lot))
	planClean := strings.ToUpper(strings.TrimSpace(plan))

	if lotClean == "" || !vicLotPattern.MatchString(lotClean) {
		return models.ParsedParcel{}, fmt.Errorf("invalid VIC lot component %q", lot)
	}
	if planClean == "" || !vicPlanPattern.MatchString(planClean) {
		return models.ParsedParcel{}, fmt.Errorf("invalid VIC plan component %q (expected something like PS433970)", plan)
	}

	return models.ParsedParcel{
		ID:    lotClean + `\` + planClean,
		State: models.VIC,
		Raw:   raw,
		Lot:   lotClean,
		Plan:  planClean,
	}, nil
}

// NormalizeVIC converts one free-text VIC parcel reference into its
// canonical LOT\PLAN SPI form.
func NormalizeVIC(raw string) (models.ParsedParcel, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return models.ParsedParcel{}, fmt.Errorf("empty VIC parcel identifier")
	}

	if lot, plan, ok := strings.Cut(cleaned, `\`); ok {
		return vicParcel(raw, lot, plan)
	}

	cleaned = strings.ReplaceAll(cleaned, "/", " ")
	cleaned = vicPunct.ReplaceAllString(cleaned, " ")
	cleaned = vicLotWord.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(nswWhitespace.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return models.ParsedParcel{}, fmt.Errorf("invalid VIC parcel identifier")
	}

	tokens := strings.Split(cleaned, " ")

	// The rightmost plan-shaped token is the plan; the first remaining
	// token is the lot candidate.
	planIndex := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		if vicPlanPattern.MatchString(tokens[i]) {
			planIndex = i
			break
		}
	}
	if planIndex < 0 {
		return models.ParsedParcel{}, fmt.Errorf("missing VIC plan component (e.g. PS433970)")
	}

	var lot string
	for i, tok := range tokens {
		if i != planIndex && tok != "" {
			lot = tok
			break
		}
	}
	if lot == "" {
		return models.ParsedParcel{}, fmt.Errorf("missing VIC lot component")
	}

	return vicParcel(raw, lot, tokens[planIndex])
}

// ParseVIC parses newline-separated VIC parcel references, collapsing
// duplicate canonical SPIs within one call.
func ParseVIC(rawText string) ([]models.ParsedParcel, []models.MalformedEntry) {
	var valid []models.ParsedParcel
	var malformed []models.MalformedEntry
	seen := make(map[string]bool)

	for _, line := range splitLines(rawText) {
		parcel, err := NormalizeVIC(line)
		if err != nil {
			malformed = append(malformed, models.MalformedEntry{Raw: line, Error: err.Error()})
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
