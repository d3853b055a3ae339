package chart

import "strconv"

const (
	// NoDataLabel labels the single placeholder slice of an empty chart.
	NoDataLabel = "Not enough data"
	// NoDataColor is the neutral color of the placeholder slice.
	NoDataColor = "#d3d3d3"
	// MaxLegendSlices is the largest slice count that still shows a legend.
	MaxLegendSlices = 4

	sliceTextTemplate  = "<b>%{value}</b><br>(%{percent})"
	noDataTextTemplate = " "
	noDataHover        = "%{label}"
	startRotation      = 180
)

// RenderSpec is the render-ready description of one proportion chart. It is
// built once per Config and not modified afterwards.
type RenderSpec struct {
	Values []float64 `json:"values"`
	Labels []string  `json:"labels"`
	// Colors is nil when the drawing service palette should be used.
	Colors []string `json:"colors,omitempty"`
	NoData bool     `json:"no_data"`
	Total  float64  `json:"total"`

	TextTemplate    string  `json:"text_template"`
	HoverTemplate   string  `json:"hover_template,omitempty"`
	TextPosition    string  `json:"text_position,omitempty"`
	TextOrientation string  `json:"text_orientation,omitempty"`
	Rotation        float64 `json:"rotation,omitempty"`

	TargetLink string    `json:"target_link,omitempty"`
	Filters    Filters   `json:"filters,omitempty"`
	Filtering  Filtering `json:"filtering"`

	quickLink bool
}

// Build turns a chart config into its render spec.
func Build(cfg Config) RenderSpec {
	if !cfg.HasData() {
		return RenderSpec{
			Values:        []float64{1},
			Labels:        []string{NoDataLabel},
			Colors:        []string{NoDataColor},
			NoData:        true,
			TextTemplate:  noDataTextTemplate,
			HoverTemplate: noDataHover,
			quickLink:     cfg.QuickLink != nil,
		}
	}

	spec := RenderSpec{
		Values:          append([]float64(nil), cfg.QueryParams.Values...),
		Labels:          append([]string(nil), cfg.QueryParams.Labels...),
		TextTemplate:    sliceTextTemplate,
		TextPosition:    "inside",
		TextOrientation: "horizontal",
		Rotation:        startRotation,
		TargetLink:      cfg.TargetLink,
		Filtering:       cfg.Filtering,
		quickLink:       cfg.QuickLink != nil,
	}
	if cfg.Colors != nil {
		spec.Colors = append([]string(nil), cfg.Colors...)
	}
	if cfg.Filters != nil {
		spec.Filters = make(Filters, len(cfg.Filters))
		for k, v := range cfg.Filters {
			spec.Filters[k] = v
		}
	}
	for _, v := range spec.Values {
		spec.Total += v
	}
	return spec
}

// BuildAll builds the specs for every entry of the set, in order.
func BuildAll(set Set) []RenderSpec {
	specs := make([]RenderSpec, 0, len(set))
	for _, e := range set {
		specs = append(specs, Build(e.Config))
	}
	return specs
}

// ShowLegend reports whether the chart legend should be drawn. Charts with
// no data, more than MaxLegendSlices slices, or a quick link hide it.
func (s RenderSpec) ShowLegend() bool {
	return !s.NoData && !s.quickLink && len(s.Labels) <= MaxLegendSlices
}

// Interactive reports whether slice clicks should be handled.
func (s RenderSpec) Interactive() bool { return !s.NoData }

// TotalText formats the center annotation value.
func (s RenderSpec) TotalText() string {
	return strconv.FormatFloat(s.Total, 'f', -1, 64)
}
