package dashboard

import (
	"cardgrid/internal/dom"
	"cardgrid/internal/grid"
)

// Messages sent by the page.
const (
	msgHello  = "hello"
	msgResize = "resize"
	msgClick  = "click"
)

// clientMessage is any message received from the page.
type clientMessage struct {
	Type    string  `json:"type"`
	Width   float64 `json:"width"`
	Surface string  `json:"surface,omitempty"`
	Index   int     `json:"index"`
	Label   string  `json:"label,omitempty"`
}

// layoutRequest is posted to the session loop when a debounced resize fires.
type layoutRequest struct {
	width float64
}

// AppendCommand inserts markup at the end of a parent element.
type AppendCommand struct {
	Op     string `json:"op"`
	Parent string `json:"parent"`
	HTML   string `json:"html"`
}

// StyleCommand updates inline style properties.
type StyleCommand struct {
	Op    string         `json:"op"`
	ID    string         `json:"id"`
	Style []dom.Property `json:"style"`
}

// ClassCommand adds classes to an element.
type ClassCommand struct {
	Op      string   `json:"op"`
	ID      string   `json:"id"`
	Classes []string `json:"classes"`
}

// LayoutCommand reports a completed layout pass.
type LayoutCommand struct {
	Op     string    `json:"op"`
	Pass   grid.Pass `json:"pass"`
	Failed int       `json:"failed"`
}

// NavigateCommand replaces the page location.
type NavigateCommand struct {
	Op  string `json:"op"`
	URL string `json:"url"`
}
