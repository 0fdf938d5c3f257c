package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"cadastral-export/internal/models"
)

// SA inputs arrive in three mutually exclusive identifier schemes:
// title references (CT6204/831), compact DCDB strings where the plan
// and lot tokens are concatenated (D117877A22), and generic plan+lot
// pairs ("D117877 A22"). Scheme detection is ordered: the title form's
// slash makes it unambiguous, so it is tried first, then the compact
// DCDB regex, then the generic heuristic. Canonical ids carry a scheme
// prefix because the three id spaces are not disjoint as bare strings.

// SAScheme tags which identifier scheme an SA input matched.
type SAScheme int

const (
	SASchemeTitle SAScheme = iota
	SASchemeDCDB
	SASchemeParcel
)

const (
	saTitlePrefix = "SA:TITLE:"
	saDCDBPrefix  = "SA:DCDB:"
)

var (
	saTitleRefPattern    = regexp.MustCompile(`^[A-Z]{1,3}[0-9]{1,6}/[0-9]{1,6}$`)
	saDCDBCompactPattern = regexp.MustCompile(`^([A-Z]{1,3}[0-9]+)([A-Z]{1,2}[0-9]+)$`)
	saPlanPattern        = regexp.MustCompile(`^[A-Z]+[0-9]+[A-Z0-9]*$`)
	saLotPattern         = regexp.MustCompile(`^[A-Z0-9]+$`)
	saPunct              = regexp.MustCompile(`[,;]+`)
	saDigits             = regexp.MustCompile(`[0-9]`)
)

var saNoiseWord = regexp.MustCompile(`\b(LOT|LOTS|PLAN|PARCEL|ALLOTMENT|PIECE|SEC|SECTION|HD|HUNDRED|OF)\b`)

func saNormalizeTitleRef(raw, value string) (models.ParsedParcel, error) {
	cleaned := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(value)), " ", "")
	if !saTitleRefPattern.MatchString(cleaned) {
		return models.ParsedParcel{}, fmt.Errorf("invalid SA title reference, expected format like CT6204/831")
	}
	volume, folio, _ := strings.Cut(cleaned, "/")
	return models.ParsedParcel{
		ID:     saTitlePrefix + cleaned,
		State:  models.SA,
		Raw:    raw,
		Volume: volume,
		Folio:  folio,
	}, nil
}

func saDCDBParcel(raw, plan, lot string) models.ParsedParcel {
	return models.ParsedParcel{
		ID:    saDCDBPrefix + plan + lot,
		State: models.SA,
		Raw:   raw,
		Plan:  plan,
		Lot:   lot,
	}
}

// saDigitCount is the plan-vs-lot heuristic: the plan token carries
// more digits; on a tie the longer token wins.
func saDigitCount(s string) int {
	return len(saDigits.FindAllString(s, -1))
}

func saNormalizePlanLot(raw string) (models.ParsedParcel, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, "/", " ")
	cleaned = saPunct.ReplaceAllString(cleaned, " ")
	cleaned = saNoiseWord.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(nswWhitespace.ReplaceAllString(cleaned, " "))

	if cleaned == "" {
		return models.ParsedParcel{}, fmt.Errorf("invalid SA plan parcel, expected plan and lot values")
	}

	parts := strings.Split(cleaned, " ")
	if len(parts) < 2 {
		return models.ParsedParcel{}, fmt.Errorf("invalid SA plan parcel, expected plan and lot values")
	}

	isPlan := func(tok string) bool { return saPlanPattern.MatchString(tok) }
	isLot := func(tok string) bool { return saLotPattern.MatchString(tok) }

	first, last := parts[0], parts[len(parts)-1]

	var plan, lot string
	switch {
	case isPlan(first) && isLot(last) && isPlan(last) && isLot(first):
		// Both orderings are plausible; prefer the token with more
		// digits (then the longer token) as the plan.
		plan, lot = first, last
		if saDigitCount(last) > saDigitCount(first) ||
			(saDigitCount(last) == saDigitCount(first) && len(last) > len(first)) {
			plan, lot = last, first
		}
	case isPlan(first) && isLot(last):
		plan, lot = first, last
	case isPlan(last) && isLot(first):
		plan, lot = last, first
	default:
		if joined := strings.Join(parts[:len(parts)-1], ""); isPlan(joined) && isLot(last) {
			plan, lot = joined, last
		} else if joined := strings.Join(parts[1:], ""); isPlan(joined) && isLot(first) {
			plan, lot = joined, first
		}
	}

	if plan == "" || lot == "" {
		return models.ParsedParcel{}, fmt.Errorf("invalid SA plan parcel, expected format like 'D117877 A22'")
	}
	return saDCDBParcel(raw, plan, lot), nil
}

// NormalizeSA tries the three SA identifier schemes in priority order
// against one input fragment.
func NormalizeSA(raw string) (models.ParsedParcel, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.ParsedParcel{}, fmt.Errorf("empty SA parcel reference")
	}

	// Already-canonical ids round-trip unchanged.
	upper := strings.ToUpper(trimmed)
	if rest, ok := strings.CutPrefix(upper, saTitlePrefix); ok {
		return saNormalizeTitleRef(raw, rest)
	}
	if rest, ok := strings.CutPrefix(upper, saDCDBPrefix); ok {
		if m := saDCDBCompactPattern.FindStringSubmatch(rest); m != nil {
			return saDCDBParcel(raw, m[1], m[2]), nil
		}
		// A plan+lot concatenation whose split is not recoverable, e.g.
		// D11787722 from plan D117877 and lot 22. The id is kept whole.
		if saLotPattern.MatchString(rest) {
			return models.ParsedParcel{ID: saDCDBPrefix + rest, State: models.SA, Raw: raw}, nil
		}
		return models.ParsedParcel{}, fmt.Errorf("invalid SA DCDB identifier %q", raw)
	}

	if parcel, err := saNormalizeTitleRef(raw, trimmed); err == nil {
		return parcel, nil
	}

	compact := strings.ReplaceAll(strings.ToUpper(trimmed), " ", "")
	if m := saDCDBCompactPattern.FindStringSubmatch(compact); m != nil && strings.IndexAny(trimmed, " /") < 0 {
		return saDCDBParcel(raw, m[1], m[2]), nil
	}

	return saNormalizePlanLot(raw)
}

// ClassifySA maps one SA identifier (canonical or raw) onto the query
// scheme and the value to match against that scheme's service column.
func ClassifySA(id string) (SAScheme, string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(id))

	if rest, ok := strings.CutPrefix(trimmed, saTitlePrefix); ok {
		return SASchemeTitle, rest, nil
	}
	if rest, ok := strings.CutPrefix(trimmed, saDCDBPrefix); ok {
		if saDCDBCompactPattern.MatchString(rest) {
			return SASchemeDCDB, rest, nil
		}
		return SASchemeParcel, rest, nil
	}

	parcel, err := NormalizeSA(id)
	if err != nil {
		return 0, "", err
	}
	if parcel.Volume != "" {
		return SASchemeTitle, parcel.Volume + "/" + parcel.Folio, nil
	}
	value := parcel.Plan + parcel.Lot
	if saDCDBCompactPattern.MatchString(value) {
		return SASchemeDCDB, value, nil
	}
	return SASchemeParcel, value, nil
}

// ParseSA parses free-form SA input; fragments split the same way QLD
// prose entries do.
func ParseSA(rawText string) ([]models.ParsedParcel, []models.MalformedEntry) {
	var valid []models.ParsedParcel
	var malformed []models.MalformedEntry

	for _, fragment := range splitProseFragments(rawText) {
		parcel, err := NormalizeSA(fragment)
		if err != nil {
			malformed = append(malformed, models.MalformedEntry{Raw: fragment, Error: err.Error()})
			continue
		}
		valid = append(valid, parcel)
	}

	return valid, malformed
}
