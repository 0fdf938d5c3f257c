// Package parsers normalizes free-text Australian cadastral parcel
// references into canonical per-state identifiers.
package parsers

import (
	"fmt"
	"regexp"
	"strings"

	"cadastral-export/internal/models"
)

var (
	lineSplit  = regexp.MustCompile(`[\n;]+`)
	proseSplit = regexp.MustCompile(`(?i),|\band\b|&`)
)

// splitLines breaks input on newlines, dropping blanks.
func splitLines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitProseFragments additionally breaks on commas, semicolons,
// ampersands, and the word "and", which show up in prose-style QLD and
// SA entry ("lot 1 and lot 2 on RP912949").
func splitProseFragments(rawText string) []string {
	var fragments []string
	for _, line := range lineSplit.Split(rawText, -1) {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		found := false
		for _, part := range proseSplit.Split(line, -1) {
			if part = strings.TrimSpace(part); part != "" {
				fragments = append(fragments, part)
				found = true
			}
		}
		if !found {
			fragments = append(fragments, line)
		}
	}
	return fragments
}

// Parse routes raw free-text input to the normalizer for the given
// state. Both result lists preserve input fragment order.
func Parse(state models.State, rawText string) ([]models.ParsedParcel, []models.MalformedEntry, error) {
	switch state {
	case models.NSW:
		valid, malformed := ParseNSW(rawText)
		return valid, malformed, nil
	case models.QLD:
		valid, malformed := ParseQLD(rawText)
		return valid, malformed, nil
	case models.SA:
		valid, malformed := ParseSA(rawText)
		return valid, malformed, nil
	case models.VIC:
		valid, malformed := ParseVIC(rawText)
		return valid, malformed, nil
	}
	return nil, nil, fmt.Errorf("unsupported state %q", state)
}
