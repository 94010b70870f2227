package navigation

import "strings"

// knownSchemes are prefixes that mark input as an explicit URL.
var knownSchemes = []string{
	"http://",
	"https://",
	"file://",
	"ftp://",
	"about:",
	"data:",
	"blob:",
	"view-source:",
	"chrome://",
	"devtools://",
}

// HasScheme reports whether text starts with a known explicit scheme.
func HasScheme(text string) bool {
	lower := strings.ToLower(text)
	for _, scheme := range knownSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// ResolveAddress turns address-bar text into the URL to load. Rules, first
// match wins:
//
//  1. explicit scheme: used as-is
//  2. no spaces and contains "://", "/" or "@": URL, https:// added if no scheme
//  3. contains a space: search query with spaces replaced by "+"
//  4. contains a ".": bare domain, https:// added
//  5. anything else: search query appended verbatim
//
// Surrounding whitespace is ignored; blank input resolves to "".
func ResolveAddress(text, searchURL string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if HasScheme(text) {
		return text
	}

	hasSpace := strings.Contains(text, " ")

	if !hasSpace && strings.ContainsAny(text, "/@") {
		if strings.Contains(text, "://") {
			return text
		}
		return "https://" + text
	}

	if hasSpace {
		return searchURL + strings.ReplaceAll(text, " ", "+")
	}

	if strings.Contains(text, ".") {
		return "https://" + text
	}

	return searchURL + text
}
