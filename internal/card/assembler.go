package card

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cardgrid/internal/chart"
	"cardgrid/internal/dom"
	"cardgrid/internal/drawing"
	"cardgrid/internal/grid"
	logpkg "cardgrid/internal/log"
	"cardgrid/internal/navigation"
	"cardgrid/internal/slug"
)

// ErrContainerNotFound is returned when the grid container is missing from
// the host document.
var ErrContainerNotFound = errors.New("grid container not found")

// Navigator performs a full page navigation.
type Navigator interface {
	Navigate(url string) error
}

// Inline styles as name, value pairs.
var (
	containerStyle = []string{
		"display", "flex",
		"flex-wrap", "wrap",
		"justify-content", "flex-start",
		"gap", strconv.Itoa(grid.GapPx) + "px",
		"width", "96%",
		"margin", "0 auto",
	}
	cardStyle = []string{
		"background", "#fff",
		"border-radius", "12px",
		"box-shadow", "0 2px 6px rgba(0,0,0,0.08)",
		"padding", "16px",
		"box-sizing", "border-box",
		"min-width", "220px",
		"display", "flex",
		"flex-direction", "column",
		"align-items", "stretch",
	}
	surfaceStyle = []string{
		"width", "100%",
		"height", "260px",
		"flex", "1 1 auto",
	}
	quickLinkStyle = []string{
		"text-align", "center",
		"margin-top", "10px",
	}
)

// ContainerStyle returns the grid container declarations, e.g. for pages
// rendered outside a session.
func ContainerStyle() string { return declarations(containerStyle) }

// CardStyle returns the card declarations.
func CardStyle() string { return declarations(cardStyle) }

// SurfaceStyle returns the chart surface declarations.
func SurfaceStyle() string { return declarations(surfaceStyle) }

// QuickLinkStyle returns the quick link wrapper declarations.
func QuickLinkStyle() string { return declarations(quickLinkStyle) }

func declarations(pairs []string) string {
	decls := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		decls = append(decls, pairs[i]+": "+pairs[i+1])
	}
	return strings.Join(decls, "; ")
}

// Card is the visual container of one chart.
type Card struct {
	Slug      string
	Element   *dom.Element
	Surface   *dom.Element
	QuickLink *dom.Element
	Spec      chart.RenderSpec
}

// ApplyBasis sets the flex basis computed by the grid. Only the card's
// width properties change; the chart itself is left alone.
func (c *Card) ApplyBasis(basis string) {
	c.Element.SetStyle("flex", "1 1 "+basis, "max-width", basis)
}

// Assembler builds cards inside the grid container.
type Assembler struct {
	doc       *dom.Document
	container *dom.Element
	drawer    drawing.Service
	nav       Navigator
	state     *grid.State
	log       logpkg.Logger
	slugs     map[string]string
}

// NewAssembler binds an assembler to the container with the given id.
func NewAssembler(doc *dom.Document, containerID string, drawer drawing.Service, nav Navigator, state *grid.State, l logpkg.Logger) (*Assembler, error) {
	container := doc.ElementByID(containerID)
	if container == nil {
		return nil, fmt.Errorf("%w: #%s", ErrContainerNotFound, containerID)
	}
	if l == nil {
		l = logpkg.Global()
	}
	return &Assembler{
		doc:       doc,
		container: container,
		drawer:    drawer,
		nav:       nav,
		state:     state,
		log:       l,
		slugs:     make(map[string]string),
	}, nil
}

// Setup claims the container for the grid.
func (a *Assembler) Setup() {
	a.container.SetStyle(containerStyle...)
}

// Assemble creates the card for cfg, paints spec into it and registers it
// with the grid. A paint failure is returned as is.
func (a *Assembler) Assemble(cfg chart.Config, spec chart.RenderSpec) (*Card, error) {
	el := a.doc.CreateElement("div")
	el.SetStyle(cardStyle...)

	surface := a.doc.CreateElement("div")
	surface.SetStyle(surfaceStyle...)

	// Attach before painting so the chart is sized against the real box.
	el.AppendChild(surface)
	a.container.AppendChild(el)

	layout := drawing.CardLayout(cfg.Name, spec.TotalText())
	if err := a.drawer.Paint(surface, spec, layout); err != nil {
		return nil, fmt.Errorf("failed to paint chart %q: %w", cfg.Name, err)
	}

	c := &Card{Element: el, Surface: surface, Spec: spec}

	if spec.Interactive() {
		a.drawer.OnClick(surface, a.clickHandler(cfg.Name, spec))
	}

	if cfg.QuickLink != nil {
		c.QuickLink = a.quickLink(cfg.QuickLink)
		el.AppendChild(c.QuickLink.Parent())
	}

	c.Slug = slug.Slugify(cfg.Name)
	if prev, ok := a.slugs[c.Slug]; ok && prev != cfg.Name {
		a.log.Debug("chart slug shared by several charts", "slug", c.Slug, "chart", cfg.Name, "first", prev)
	} else if !ok {
		a.slugs[c.Slug] = cfg.Name
	}
	el.AddClass(c.Slug)

	a.state.Register(c, surface)
	return c, nil
}

// AssembleAll assembles every entry of set with the matching spec.
func (a *Assembler) AssembleAll(set chart.Set, specs []chart.RenderSpec) ([]*Card, error) {
	if len(set) != len(specs) {
		return nil, fmt.Errorf("got %d specs for %d charts", len(specs), len(set))
	}
	cards := make([]*Card, 0, len(set))
	for i, e := range set {
		c, err := a.Assemble(e.Config, specs[i])
		if err != nil {
			return cards, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// quickLink builds the anchor and its centered wrapper. It returns the
// anchor; the wrapper is its parent.
func (a *Assembler) quickLink(ql *chart.QuickLink) *dom.Element {
	wrapper := a.doc.CreateElement("div")
	wrapper.SetStyle(quickLinkStyle...)

	link := a.doc.CreateElement("a")
	link.SetAttr("href", ql.URL)
	title := ql.Title
	if title == "" {
		title = ql.Label
	}
	link.SetAttr("title", title)
	link.SetText(ql.Label)
	link.AddClass("button", "quick-link")
	link.AddClass(ql.CustomCSSClasses...)

	wrapper.AppendChild(link)
	return link
}

func (a *Assembler) clickHandler(name string, spec chart.RenderSpec) drawing.ClickHandler {
	return func(ev navigation.ClickEvent) {
		dest, ok := navigation.Resolve(spec, ev)
		if !ok {
			return
		}
		if err := a.nav.Navigate(dest); err != nil {
			a.log.Warn("navigation failed", "chart", name, "url", dest, "error", err)
		}
	}
}
