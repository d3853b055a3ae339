package drawing

import "cardgrid/internal/chart"

// Hole is the fraction of the radius cut out to draw a donut.
const Hole = 0.6

// Trace is a single Plotly pie trace.
type Trace struct {
	Type                  string    `json:"type"`
	Hole                  float64   `json:"hole"`
	Values                []float64 `json:"values"`
	Labels                []string  `json:"labels"`
	Marker                *Marker   `json:"marker,omitempty"`
	ShowLegend            bool      `json:"showlegend"`
	TextTemplate          string    `json:"texttemplate,omitempty"`
	HoverTemplate         string    `json:"hovertemplate,omitempty"`
	Rotation              float64   `json:"rotation,omitempty"`
	TextPosition          string    `json:"textposition,omitempty"`
	InsideTextOrientation string    `json:"insidetextorientation,omitempty"`
}

// Marker carries per-slice colors.
type Marker struct {
	Colors []string `json:"colors"`
}

// TraceFor maps a render spec onto the Plotly pie contract.
func TraceFor(spec chart.RenderSpec) Trace {
	t := Trace{
		Type:                  "pie",
		Hole:                  Hole,
		Values:                spec.Values,
		Labels:                spec.Labels,
		ShowLegend:            spec.ShowLegend(),
		TextTemplate:          spec.TextTemplate,
		HoverTemplate:         spec.HoverTemplate,
		Rotation:              spec.Rotation,
		TextPosition:          spec.TextPosition,
		InsideTextOrientation: spec.TextOrientation,
	}
	if spec.Colors != nil {
		t.Marker = &Marker{Colors: spec.Colors}
	}
	return t
}

type Font struct {
	Size   int    `json:"size"`
	Weight string `json:"weight,omitempty"`
}

type Margin struct {
	T int `json:"t"`
	B int `json:"b"`
	L int `json:"l"`
	R int `json:"r"`
}

type Legend struct {
	YAnchor     string  `json:"yanchor"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation string  `json:"orientation"`
	BgColor     string  `json:"bgcolor"`
}

type Title struct {
	Text string `json:"text,omitempty"`
	Font Font   `json:"font"`
}

type Annotation struct {
	Font      Font    `json:"font"`
	ShowArrow bool    `json:"showarrow"`
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Layout is the Plotly layout object shared by every card.
type Layout struct {
	Autosize    bool         `json:"autosize"`
	Margin      Margin       `json:"margin"`
	Legend      Legend       `json:"legend"`
	Title       Title        `json:"title"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// BaseLayout returns the layout common to all charts: tight margins, a
// horizontal legend centered below the chart and a small title.
func BaseLayout() Layout {
	return Layout{
		Autosize: true,
		Margin:   Margin{T: 30, B: 30, L: 10, R: 10},
		Legend: Legend{
			YAnchor:     "bottom",
			XAnchor:     "center",
			X:           0.5,
			Y:           -0.2,
			Orientation: "h",
			BgColor:     "transparent",
		},
		Title: Title{Font: Font{Size: 14}},
	}
}

// CardLayout merges a card title and its center total into the base layout.
func CardLayout(title, total string) Layout {
	l := BaseLayout()
	l.Title.Text = title
	l.Annotations = []Annotation{{
		Font:      Font{Size: 18, Weight: "bold"},
		ShowArrow: false,
		Text:      "<b>" + total + "</b>",
		X:         0.5,
		Y:         0.5,
	}}
	return l
}

// Options are the Plotly config flags used for every chart.
type Options struct {
	DisplayModeBar bool `json:"displayModeBar"`
	Responsive     bool `json:"responsive"`
}

// DefaultOptions hides the toolbar and lets charts follow their surface.
func DefaultOptions() Options {
	return Options{DisplayModeBar: false, Responsive: true}
}
