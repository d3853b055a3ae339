package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9 -]`)
	spaces     = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Slugify turns a display name into a lowercase identifier usable as a CSS
// class or URL segment: "  CPU Usage! " becomes "cpu-usage".
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = disallowed.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
