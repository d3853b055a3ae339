package navigation

import (
	"net/url"
	"strings"

	"cardgrid/internal/chart"
)

// ClickEvent identifies the slice a user clicked.
type ClickEvent struct {
	SliceIndex int    `json:"index"`
	Label      string `json:"label"`
}

// Resolve computes the destination URL for a slice click. It returns false
// when the chart has nothing to navigate to: placeholder charts and charts
// without a target link.
func Resolve(spec chart.RenderSpec, ev ClickEvent) (string, bool) {
	if !spec.Interactive() || spec.TargetLink == "" {
		return "", false
	}
	if spec.Filtering.Disabled() {
		return spec.TargetLink, true
	}
	if suffix, ok := spec.Filters.Lookup(ev.SliceIndex); ok {
		return spec.TargetLink + suffix, true
	}
	return spec.TargetLink + EncodeComponent(ev.Label), true
}

// componentUnescaper undoes the escapes QueryEscape applies to characters
// a browser's encodeURIComponent leaves alone, and turns '+' into %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s for use as a single URL component.
// Only A-Z a-z 0-9 and - _ . ! ~ * ' ( ) are kept as is.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
