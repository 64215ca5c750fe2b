package view

import (
	"regexp"
	"strings"
)

var (
	whitespaceRX = regexp.MustCompile(`\s+`)
	nonSlugRX    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphensRX    = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL slug from a title: lowercase ASCII letters, digits and
// single hyphens, never starting or ending with a hyphen.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = whitespaceRX.ReplaceAllString(s, "-")
	s = nonSlugRX.ReplaceAllString(s, "")
	s = hyphensRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
