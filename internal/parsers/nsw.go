package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cadastral-export/internal/models"
)

// NSW lot/plan references take the form LOT[/SECTION]//PLAN where the
// plan is an alpha prefix (DP, SP, ...) followed by digits. Users enter
// them in many looser shapes: single-slash, sentence form ("LOT 13 SEC
// 2 DP1242624"), or loose tokens with a split plan ("DP 30493").

const maxNSWRangeLots = 200

var (
	nswLotSectionPattern = regexp.MustCompile(`^[A-Z0-9]+$`)
	nswPlanPattern       = regexp.MustCompile(`^[A-Z]+[A-Z0-9]*$`)

	nswCanonicalPattern   = regexp.MustCompile(`^([A-Z0-9]+)(?:/([A-Z0-9]+))?//([A-Z]+[A-Z0-9]*)$`)
	nswSingleSlashPattern = regexp.MustCompile(`^([A-Z0-9]+)(?:/([A-Z0-9]+))?/([A-Z]+[A-Z0-9]*)$`)
	nswSentencePattern    = regexp.MustCompile(`^LOT ([A-Z0-9]+)(?: SEC ([A-Z0-9]+))? ([A-Z]+[A-Z0-9]*)$`)
	nswRangePattern       = regexp.MustCompile(`^([0-9]+)\s*-\s*([0-9]+)//(.+)$`)

	nswSplitPlanPattern = regexp.MustCompile(`\b([A-Z]{2,}) ([0-9]+)\b`)
	nswSectionWord      = regexp.MustCompile(`\bSECTION\b`)
	nswWhitespace       = regexp.MustCompile(`\s+`)
	nswTokenSplit       = regexp.MustCompile(`[\s,;/]+`)
	nswAllDigits        = regexp.MustCompile(`^[0-9]+$`)
	nswAllAlpha         = regexp.MustCompile(`^[A-Z]+$`)
)

var nswNoiseTokens = map[string]bool{
	"LOT":     true,
	"LOTS":    true,
	"SEC":     true,
	"SECT":    true,
	"SECTION": true,
	"PLAN":    true,
}

func nswCleanLotSection(value, label string) (string, error) {
	cleaned := nswWhitespace.ReplaceAllString(strings.ToUpper(value), "")
	if cleaned == "" || !nswLotSectionPattern.MatchString(cleaned) {
		return "", fmt.Errorf("invalid NSW %s %q", label, value)
	}
	return cleaned, nil
}

func nswCleanPlan(value string) (string, error) {
	cleaned := nswWhitespace.ReplaceAllString(strings.ToUpper(value), "")
	if cleaned == "" || !nswPlanPattern.MatchString(cleaned) {
		return "", fmt.Errorf("invalid NSW plan %q", value)
	}
	return cleaned, nil
}

func nswCanonical(raw, lot, section, plan string) (models.ParsedParcel, error) {
	lotClean, err := nswCleanLotSection(lot, "lot")
	if err != nil {
		return models.ParsedParcel{}, err
	}
	var sectionClean string
	if section != "" {
		sectionClean, err = nswCleanLotSection(section, "section")
		if err != nil {
			return models.ParsedParcel{}, err
		}
	}
	planClean, err := nswCleanPlan(plan)
	if err != nil {
		return models.ParsedParcel{}, err
	}

	id := lotClean + "//" + planClean
	if sectionClean != "" {
		id = lotClean + "/" + sectionClean + "//" + planClean
	}

	return models.ParsedParcel{
		ID:      id,
		State:   models.NSW,
		Raw:     raw,
		Lot:     lotClean,
		Section: sectionClean,
		Plan:    planClean,
	}, nil
}

// nswPrepare uppercases, unifies separators, and rejoins split plan
// tokens ("DP 30493" -> "DP30493") without touching noise words.
func nswPrepare(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	upper = strings.ReplaceAll(upper, "\\", "/")
	upper = nswSectionWord.ReplaceAllString(upper, "SEC")
	upper = nswWhitespace.ReplaceAllString(upper, " ")
	return nswSplitPlanPattern.ReplaceAllStringFunc(upper, func(m string) string {
		alpha, digits, _ := strings.Cut(m, " ")
		if nswNoiseTokens[alpha] {
			return m
		}
		return alpha + digits
	})
}

// NormalizeNSW converts one free-text NSW parcel reference into its
// canonical LOT[/SECTION]//PLAN form. Candidate grammars are tried in a
// fixed order so tie-breaks are stable: canonical, single-slash,
// sentence, then the loose-token fallback.
func NormalizeNSW(raw string) (models.ParsedParcel, error) {
	upper := nswPrepare(raw)
	if upper == "" {
		return models.ParsedParcel{}, fmt.Errorf("empty NSW parcel reference")
	}

	for _, pattern := range []*regexp.Regexp{nswCanonicalPattern, nswSingleSlashPattern, nswSentencePattern} {
		if m := pattern.FindStringSubmatch(upper); m != nil {
			return nswCanonical(raw, m[1], m[2], m[3])
		}
	}

	tokens := nswTokenSplit.Split(upper, -1)
	kept := tokens[:0]
	for _, tok := range tokens {
		if tok != "" && !nswNoiseTokens[tok] {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return models.ParsedParcel{}, fmt.Errorf("unable to parse NSW lot/plan from %q", raw)
	}

	// The plan is the trailing token, rejoining a trailing alpha/digit
	// split such as ["DP", "30493"].
	plan := kept[len(kept)-1]
	rest := kept[:len(kept)-1]
	if len(rest) > 0 && nswAllDigits.MatchString(plan) && nswAllAlpha.MatchString(rest[len(rest)-1]) {
		plan = rest[len(rest)-1] + plan
		rest = rest[:len(rest)-1]
	}
	if !nswPlanPattern.MatchString(plan) {
		return models.ParsedParcel{}, fmt.Errorf("no NSW plan found in %q (expected something like DP131118)", raw)
	}
	if len(rest) == 0 {
		return models.ParsedParcel{}, fmt.Errorf("missing NSW lot value in %q", raw)
	}

	lot := rest[0]
	section := ""
	if len(rest) > 1 {
		section = rest[1]
	}
	return nswCanonical(raw, lot, section, plan)
}

// MatchNSWCanonical reports whether term is already in the strict
// LOT[/SECTION]//PLAN form, returning its components when it is.
func MatchNSWCanonical(term string) (models.ParsedParcel, bool) {
	upper := strings.ToUpper(strings.TrimSpace(term))
	if m := nswCanonicalPattern.FindStringSubmatch(upper); m != nil {
		if p, err := nswCanonical(term, m[1], m[2], m[3]); err == nil {
			return p, true
		}
	}
	return models.ParsedParcel{}, false
}

// expandNSWRange expands a lot range such as "1-3//DP131118" into one
// parcel per lot. Returns ok=false when the line is not a range at all.
func expandNSWRange(line string) ([]models.ParsedParcel, bool, error) {
	m := nswRangePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(line)))
	if m == nil {
		return nil, false, nil
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false, nil
	}
	end, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false, nil
	}
	plan, err := nswCleanPlan(m[3])
	if err != nil {
		return nil, true, err
	}
	if end < start || end-start > maxNSWRangeLots {
		return nil, true, fmt.Errorf("lot range too large or invalid (max %d lots)", maxNSWRangeLots)
	}

	parcels := make([]models.ParsedParcel, 0, end-start+1)
	for lot := start; lot <= end; lot++ {
		parcel, err := nswCanonical(line, strconv.Itoa(lot), "", plan)
		if err != nil {
			return nil, true, err
		}
		parcels = append(parcels, parcel)
	}
	return parcels, true, nil
}

// ParseNSW parses newline-separated NSW parcel references, expanding
// lot ranges, and collects malformed lines alongside valid results.
func ParseNSW(rawText string) ([]models.ParsedParcel, []models.MalformedEntry) {
	var valid []models.ParsedParcel
	var malformed []models.MalformedEntry

	for _, line := range splitLines(rawText) {
		if parcels, isRange, err := expandNSWRange(line); isRange {
			if err != nil {
				malformed = append(malformed, models.MalformedEntry{Raw: line, Error: err.Error()})
				continue
			}
			valid = append(valid, parcels...)
			continue
		}

		parcel, err := NormalizeNSW(line)
		if err != nil {
			malformed = append(malformed, models.MalformedEntry{Raw: line, Error: err.Error()})
			continue
		}
		valid = append(valid, parcel)
	}

	return valid, malformed
}
