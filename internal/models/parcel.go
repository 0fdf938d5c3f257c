package models

import (
	"fmt"
	"strings"
)

// State identifies an Australian state or territory with a supported
// cadastral identifier grammar.
type State string

const (
	NSW State = "NSW"
	QLD State = "QLD"
	SA  State = "SA"
	VIC State = "VIC"
)

// ParseState validates a state tag from user input.
func ParseState(s string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(s))) {
	case NSW:
		return NSW, nil
	case QLD:
		return QLD, nil
	case SA:
		return SA, nil
	case VIC:
		return VIC, nil
	}
	return "", fmt.Errorf("unsupported state %q", s)
}

// ParsedParcel is the canonical result of normalizing one free-text
// parcel reference. Two differently-formatted inputs describing the
// same parcel always produce the same ID string.
type ParsedParcel struct {
	ID      string `json:"id"`
	State   State  `json:"state"`
	Raw     string `json:"raw"`
	Lot     string `json:"lot,omitempty"`
	Section string `json:"section,omitempty"`
	Plan    string `json:"plan,omitempty"`
	Volume  string `json:"volume,omitempty"`
	Folio   string `json:"folio,omitempty"`
}

// MalformedEntry records an input fragment that could not be parsed,
// along with the reason it was rejected.
type MalformedEntry struct {
	Raw   string `json:"raw"`
	Error string `json:"error"`
}

// SearchResult is a single row returned from the parcel search service.
type SearchResult struct {
	ID      string `json:"id"`
	State   State  `json:"state"`
	Lot     string `json:"lot,omitempty"`
	Section string `json:"section,omitempty"`
	Plan    string `json:"plan,omitempty"`
	Label   string `json:"label"`
}
