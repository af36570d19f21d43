package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans rich-text content (bodies, comments) to prevent XSS while
// keeping common formatting tags.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all markup; used for titles, tag names and other
// plain-text fields.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}
