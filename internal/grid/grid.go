package grid

import (
	"fmt"

	"go.uber.org/multierr"

	"cardgrid/internal/dom"
	logpkg "cardgrid/internal/log"
)

// GapPx is the horizontal gap between cards.
const GapPx = 15

// breakpoints are evaluated widest first; the first match wins.
var breakpoints = []struct {
	minWidth float64
	columns  int
}{
	{1200, 4},
	{900, 3},
	{600, 2},
}

// Card is anything the grid can size.
type Card interface {
	ApplyBasis(basis string)
}

// Resizer refits the chart drawn in a surface.
type Resizer interface {
	Resize(surface *dom.Element) error
}

// Pass is the outcome of one layout computation.
type Pass struct {
	Width   float64 `json:"width"`
	Columns int     `json:"columns"`
	Gap     int     `json:"gap"`
	Basis   string  `json:"basis"`
}

// Columns returns the column count for a container width.
func Columns(width float64) int {
	for _, bp := range breakpoints {
		if width >= bp.minWidth {
			return bp.columns
		}
	}
	return 1
}

// Plan computes the layout for a container width. Every card gets the same
// basis: the container width minus the gaps, split evenly.
func Plan(width float64) Pass {
	cols := Columns(width)
	totalGap := (cols - 1) * GapPx
	return Pass{
		Width:   width,
		Columns: cols,
		Gap:     GapPx,
		Basis:   fmt.Sprintf("calc((100%% - %dpx) / %d)", totalGap, cols),
	}
}

// State holds the cards and surfaces managed by the grid and the last
// applied pass.
type State struct {
	cards    []Card
	surfaces []*dom.Element
	current  *Pass
	passes   int
}

// NewState returns an empty grid state.
func NewState() *State { return &State{} }

// Register adds a card and its drawing surface.
func (s *State) Register(c Card, surface *dom.Element) {
	s.cards = append(s.cards, c)
	s.surfaces = append(s.surfaces, surface)
}

// Len returns the number of registered cards.
func (s *State) Len() int { return len(s.cards) }

// Surfaces returns the registered surfaces in registration order.
func (s *State) Surfaces() []*dom.Element { return s.surfaces }

// Current returns the last applied pass.
func (s *State) Current() (Pass, bool) {
	if s.current == nil {
		return Pass{}, false
	}
	return *s.current, true
}

// Passes returns how many layout passes were applied.
func (s *State) Passes() int { return s.passes }

// SurfaceResult is the resize outcome of one surface.
type SurfaceResult struct {
	Surface string `json:"surface"`
	Err     error  `json:"-"`
}

// Report describes an applied pass.
type Report struct {
	Pass    Pass
	Results []SurfaceResult
	// Err combines every resize failure; nil when all succeeded.
	Err error
}

// Failed returns the number of surfaces that could not be resized.
func (r Report) Failed() int { return len(multierr.Errors(r.Err)) }

// Controller applies layout passes to a grid state.
type Controller struct {
	resizer Resizer
	log     logpkg.Logger
}

// NewController returns a controller resizing surfaces through r.
func NewController(r Resizer, l logpkg.Logger) *Controller {
	if l == nil {
		l = logpkg.Global()
	}
	return &Controller{resizer: r, log: l}
}

// Layout sizes every card for the given container width and resizes every
// surface. A failing surface never stops the others from being resized.
// Calling Layout again with the same width produces the same styles.
func (c *Controller) Layout(st *State, width float64) Report {
	pass := Plan(width)
	for _, card := range st.cards {
		card.ApplyBasis(pass.Basis)
	}

	report := Report{Pass: pass, Results: make([]SurfaceResult, 0, len(st.surfaces))}
	for _, surface := range st.surfaces {
		err := c.resize(surface)
		report.Results = append(report.Results, SurfaceResult{Surface: surface.ID(), Err: err})
		if err != nil {
			report.Err = multierr.Append(report.Err, err)
		}
	}

	st.current = &pass
	st.passes++

	if report.Err != nil {
		c.log.Debug("some charts could not be resized", "failed", report.Failed(), "total", len(st.surfaces), "error", report.Err)
	}
	c.log.Debug("layout applied", "width", width, "columns", pass.Columns, "cards", len(st.cards))
	return report
}

func (c *Controller) resize(surface *dom.Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resize %s panicked: %v", surface.ID(), r)
		}
	}()
	return c.resizer.Resize(surface)
}
