package chart

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config describes one dashboard metric as supplied by the configuration
// source. It is decoded once at startup and never mutated.
type Config struct {
	Name        string       `yaml:"name" json:"name"`
	QueryParams *QueryParams `yaml:"query_params,omitempty" json:"query_params,omitempty"`
	Colors      []string     `yaml:"colors,omitempty" json:"colors,omitempty"`
	TargetLink  string       `yaml:"target_link,omitempty" json:"target_link,omitempty"`
	Filters     Filters      `yaml:"filters,omitempty" json:"filters,omitempty"`
	Filtering   Filtering    `yaml:"filtering,omitempty" json:"filtering,omitempty"`
	QuickLink   *QuickLink   `yaml:"quick_link,omitempty" json:"quick_link,omitempty"`
}

// QueryParams holds index-aligned slice values and labels.
type QueryParams struct {
	Values []float64 `yaml:"values" json:"values"`
	Labels []string  `yaml:"labels" json:"labels"`
}

// QuickLink is the optional call-to-action rendered below a chart.
type QuickLink struct {
	URL              string   `yaml:"url" json:"url"`
	Label            string   `yaml:"label" json:"label"`
	Title            string   `yaml:"title,omitempty" json:"title,omitempty"`
	CustomCSSClasses []string `yaml:"custom_css_classes,omitempty" json:"custom_css_classes,omitempty"`
}

// HasData reports whether the config carries at least one slice value.
func (c Config) HasData() bool {
	return c.QueryParams != nil && len(c.QueryParams.Values) > 0
}

// Filters maps a slice index to the URL suffix used when that slice is
// clicked.
type Filters map[int]string

// UnmarshalYAML accepts both integer keys and numeric string keys, the
// latter being what JSON sources produce.
func (f *Filters) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode filters: %w", err)
	}
	out := make(Filters, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("filter key %q is not a slice index", k)
		}
		out[idx] = v
	}
	*f = out
	return nil
}

// Lookup returns the suffix declared for the slice at idx.
func (f Filters) Lookup(idx int) (string, bool) {
	if f == nil {
		return "", false
	}
	s, ok := f[idx]
	return s, ok
}

// Filtering controls whether clicking a slice appends a filter suffix to
// the target link.
type Filtering int

const (
	// FilteringUnspecified behaves like FilteringEnabled.
	FilteringUnspecified Filtering = iota
	FilteringEnabled
	FilteringDisabled
)

// ParseFiltering maps a configuration string to a Filtering. Only "false"
// and "False" disable filtering and only "true" and "True" enable it;
// anything else is unspecified.
func ParseFiltering(s string) Filtering {
	switch s {
	case "true", "True":
		return FilteringEnabled
	case "false", "False":
		return FilteringDisabled
	default:
		return FilteringUnspecified
	}
}

// Disabled reports whether filter suffixes must be omitted.
func (f Filtering) Disabled() bool { return f == FilteringDisabled }

// String returns canonical lower-case representation.
func (f Filtering) String() string {
	switch f {
	case FilteringEnabled:
		return "enabled"
	case FilteringDisabled:
		return "disabled"
	default:
		return "unspecified"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Filtering) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalYAML decodes YAML booleans as well as stringified booleans such
// as "False".
func (f *Filtering) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("filtering must be a scalar, got %v", value.Tag)
	}
	switch value.Tag {
	case "!!null":
		*f = FilteringUnspecified
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return fmt.Errorf("filtering: %w", err)
		}
		*f = FilteringDisabled
		if b {
			*f = FilteringEnabled
		}
	default:
		*f = ParseFiltering(value.Value)
	}
	return nil
}
