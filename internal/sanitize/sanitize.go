// Package sanitize cleans user-provided strings before they are handed to
// downstream services. This is defense in depth for consumers that may
// render the text as markup; it does not replace output-context escaping
// at render time.
package sanitize

import "strings"

// Ampersand is replaced first so entities introduced by the later
// substitutions are not double-escaped.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Input escapes the five HTML-significant characters to their named
// entities and trims surrounding whitespace. Empty input yields an empty
// string. Single-pass only: already-escaped text is escaped again.
func Input(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(escaper.Replace(s))
}
