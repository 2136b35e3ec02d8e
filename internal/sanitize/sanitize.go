// Package sanitize turns untrusted visitor input into plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all markup, decodes entities the policy escaped and trims
// surrounding whitespace.
func Text(input string) string {
	cleaned := policy.Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
