package exports

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	filenameSanitize = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	filenameDashes   = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename reduces a user-supplied export name to a safe
// filename with the given extension. Returns "" when nothing usable
// remains.
func SanitizeFilename(value, extension string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if extension != "" && strings.HasSuffix(strings.ToLower(trimmed), strings.ToLower(extension)) {
		trimmed = trimmed[:len(trimmed)-len(extension)]
	}

	cleaned := filenameSanitize.ReplaceAllString(trimmed, "-")
	cleaned = filenameDashes.ReplaceAllString(cleaned, "-")
	cleaned = strings.Trim(cleaned, "-_.")
	if cleaned == "" {
		return ""
	}
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
	}
	return cleaned + extension
}

// ContentDisposition builds an attachment header value with both plain
// and UTF-8 encoded filenames.
func ContentDisposition(filename string) string {
	safe := strings.ReplaceAll(filename, `"`, "")
	return `attachment; filename="` + safe + `"; filename*=UTF-8''` + url.PathEscape(safe)
}
