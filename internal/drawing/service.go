package drawing

import (
	"errors"
	"fmt"

	"cardgrid/internal/chart"
	"cardgrid/internal/dom"
	"cardgrid/internal/navigation"
)

var (
	// ErrDetached is returned when painting into a surface that is not
	// part of the visible document.
	ErrDetached = errors.New("surface is not attached to the document")
	// ErrNotPainted is returned when resizing a surface that holds no chart.
	ErrNotPainted = errors.New("surface has not been painted")
)

// ClickHandler reacts to a slice click on a painted surface.
type ClickHandler func(navigation.ClickEvent)

// Service paints and resizes charts.
type Service interface {
	Paint(surface *dom.Element, spec chart.RenderSpec, layout Layout) error
	Resize(surface *dom.Element) error
	OnClick(surface *dom.Element, h ClickHandler)
}

// Emitter delivers commands to the page.
type Emitter interface {
	Emit(cmd interface{}) error
}

// PaintCommand asks the page to draw a chart into a surface.
type PaintCommand struct {
	Op      string  `json:"op"`
	Surface string  `json:"surface"`
	Data    []Trace `json:"data"`
	Layout  Layout  `json:"layout"`
	Config  Options `json:"config"`
}

// ResizeCommand asks the page to refit a chart to its surface.
type ResizeCommand struct {
	Op      string `json:"op"`
	Surface string `json:"surface"`
}

// ListenCommand subscribes the page to slice clicks on a surface.
type ListenCommand struct {
	Op      string `json:"op"`
	Surface string `json:"surface"`
}

// Remote is a Service whose drawing happens in the browser. It keeps track
// of painted surfaces and click subscriptions on the server side.
type Remote struct {
	emitter  Emitter
	options  Options
	painted  map[string]bool
	handlers map[string]ClickHandler
}

// NewRemote returns a Remote emitting through e.
func NewRemote(e Emitter) *Remote {
	return &Remote{
		emitter:  e,
		options:  DefaultOptions(),
		painted:  make(map[string]bool),
		handlers: make(map[string]ClickHandler),
	}
}

// Paint draws spec into surface. The surface must already be attached, or
// the browser would size the chart against an empty box.
func (r *Remote) Paint(surface *dom.Element, spec chart.RenderSpec, layout Layout) error {
	if !surface.Attached() {
		return fmt.Errorf("paint %s: %w", surface.ID(), ErrDetached)
	}
	cmd := PaintCommand{
		Op:      "paint",
		Surface: surface.ID(),
		Data:    []Trace{TraceFor(spec)},
		Layout:  layout,
		Config:  r.options,
	}
	if err := r.emitter.Emit(cmd); err != nil {
		return fmt.Errorf("paint %s: %w", surface.ID(), err)
	}
	r.painted[surface.ID()] = true
	return nil
}

// Resize refits a painted chart.
func (r *Remote) Resize(surface *dom.Element) error {
	if !r.painted[surface.ID()] {
		return fmt.Errorf("resize %s: %w", surface.ID(), ErrNotPainted)
	}
	return r.emitter.Emit(ResizeCommand{Op: "resize", Surface: surface.ID()})
}

// OnClick subscribes h to slice clicks on surface. If the page cannot be
// told, the session is already gone and the handler is never reached.
func (r *Remote) OnClick(surface *dom.Element, h ClickHandler) {
	r.handlers[surface.ID()] = h
	_ = r.emitter.Emit(ListenCommand{Op: "listen", Surface: surface.ID()})
}

// Dispatch routes a click reported by the page. It returns false when no
// handler is subscribed for the surface.
func (r *Remote) Dispatch(surfaceID string, ev navigation.ClickEvent) bool {
	h, ok := r.handlers[surfaceID]
	if !ok {
		return false
	}
	h(ev)
	return true
}
