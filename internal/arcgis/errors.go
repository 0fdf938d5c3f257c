package arcgis

import "fmt"

// ArcGISError is an application-level error payload returned by an
// upstream ArcGIS service, as opposed to a transport failure.
type ArcGISError struct {
	Code    int
	Message string
	Details []string
}

func (e *ArcGISError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("arcgis error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("arcgis error: %s", e.Message)
}

// errorPayload mirrors the upstream {"error": {...}} envelope.
type errorPayload struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (p *errorPayload) toError() *ArcGISError {
	return &ArcGISError{Code: p.Code, Message: p.Message, Details: p.Details}
}
