package slug

import (
	"regexp"
	"strings"
)

var (
	special = regexp.MustCompile(`[^\w\s-]`)
	space   = regexp.MustCompile(`\s+`)
	dashes  = regexp.MustCompile(`-+`)
)

// Make turns a title into a URL slug: lowercase words joined by single
// dashes, punctuation dropped.
func Make(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = special.ReplaceAllString(s, "")
	s = space.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
