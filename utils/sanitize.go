package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// SanitizeHTML cleans staff-authored HTML (board rules) to prevent XSS attacks.
func SanitizeHTML(input string) string {
	return sanitizer.Sanitize(input)
}
