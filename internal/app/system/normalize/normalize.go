// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address. Stored emails and lookups both
// pass through here so comparisons are exact.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims surrounding whitespace. Usernames stay case-sensitive.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
