// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element. Script and style bodies are dropped along
// with their tags.
var strict = bluemonday.StrictPolicy()

// PlainText strips markup from client-supplied free text. Entities the
// policy escapes are decoded again, so the result is the text a reader
// would see, ready to be stored and returned as JSON.
func PlainText(s string) string {
	if s == "" || IsPlainText(s) {
		return s
	}
	return html.UnescapeString(strict.Sanitize(s))
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
