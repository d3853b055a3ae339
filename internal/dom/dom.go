// Package dom is a small server-side model of the host page. Mutations made
// to elements attached to the document are reported to an Observer so they
// can be replayed in the browser.
package dom

import (
	"html"
	"strings"

	"github.com/google/uuid"
)

// Property is a name/value pair used for styles and attributes.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Observer receives mutations of attached elements.
type Observer interface {
	Appended(parent, child *Element)
	StyleChanged(el *Element, props []Property)
	ClassAdded(el *Element, classes []string)
}

// Document owns a tree of elements rooted at its body.
type Document struct {
	body     *Element
	byID     map[string]*Element
	observer Observer
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{byID: make(map[string]*Element)}
	d.body = &Element{doc: d, id: "body", tag: "body", root: true}
	return d
}

// SetObserver installs the mutation observer. Passing nil disables it.
func (d *Document) SetObserver(o Observer) { d.observer = o }

// Body returns the root element.
func (d *Document) Body() *Element { return d.body }

// Mount registers an element that already exists in the served markup. It
// is attached to the body without notifying the observer.
func (d *Document) Mount(id, tag string) *Element {
	el := &Element{doc: d, id: id, tag: tag, parent: d.body}
	d.body.children = append(d.body.children, el)
	d.byID[id] = el
	return el
}

// CreateElement returns a new detached element with a generated id.
func (d *Document) CreateElement(tag string) *Element {
	el := &Element{doc: d, id: "cg-" + uuid.NewString(), tag: tag}
	d.byID[el.id] = el
	return el
}

// ElementByID returns the attached element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	el, ok := d.byID[id]
	if !ok || !el.Attached() {
		return nil
	}
	return el
}

// Element is a node of the document tree.
type Element struct {
	doc      *Document
	id       string
	tag      string
	root     bool
	classes  []string
	style    []Property
	attrs    []Property
	text     string
	parent   *Element
	children []*Element
}

func (e *Element) ID() string             { return e.id }
func (e *Element) Tag() string            { return e.tag }
func (e *Element) Parent() *Element       { return e.parent }
func (e *Element) Children() []*Element   { return e.children }
func (e *Element) Classes() []string      { return e.classes }
func (e *Element) Styles() []Property     { return e.style }
func (e *Element) Text() string           { return e.text }
func (e *Element) Attributes() []Property { return e.attrs }

// Attached reports whether the element is reachable from the body.
func (e *Element) Attached() bool {
	for n := e; n != nil; n = n.parent {
		if n.root {
			return true
		}
	}
	return false
}

// AppendChild moves child under e.
func (e *Element) AppendChild(child *Element) {
	if p := child.parent; p != nil {
		for i, c := range p.children {
			if c == child {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	child.parent = e
	e.children = append(e.children, child)
	if o := e.doc.observer; o != nil && e.Attached() {
		o.Appended(e, child)
	}
}

// SetStyle sets inline style properties given as name, value pairs.
func (e *Element) SetStyle(pairs ...string) {
	props := make([]Property, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		props = append(props, Property{Name: pairs[i], Value: pairs[i+1]})
		e.style = setProperty(e.style, pairs[i], pairs[i+1])
	}
	if o := e.doc.observer; o != nil && len(props) > 0 && e.Attached() {
		o.StyleChanged(e, props)
	}
}

// Style returns the value of an inline style property.
func (e *Element) Style(name string) string { return lookup(e.style, name) }

// AddClass adds classes that are not already present.
func (e *Element) AddClass(classes ...string) {
	var added []string
	for _, c := range classes {
		if c == "" || e.HasClass(c) {
			continue
		}
		e.classes = append(e.classes, c)
		added = append(added, c)
	}
	if o := e.doc.observer; o != nil && len(added) > 0 && e.Attached() {
		o.ClassAdded(e, added)
	}
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.classes {
		if have == c {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute. Attributes are only set before the element
// is attached.
func (e *Element) SetAttr(name, value string) { e.attrs = setProperty(e.attrs, name, value) }

// Attr returns an attribute value.
func (e *Element) Attr(name string) string { return lookup(e.attrs, name) }

// SetText sets the escaped text content.
func (e *Element) SetText(s string) { e.text = s }

// HTML serializes the element and its subtree.
func (e *Element) HTML() string {
	var b strings.Builder
	e.writeHTML(&b)
	return b.String()
}

func (e *Element) writeHTML(b *strings.Builder) {
	b.WriteString("<" + e.tag)
	writeAttr(b, "id", e.id)
	if len(e.classes) > 0 {
		writeAttr(b, "class", strings.Join(e.classes, " "))
	}
	if len(e.style) > 0 {
		decls := make([]string, 0, len(e.style))
		for _, p := range e.style {
			decls = append(decls, p.Name+": "+p.Value)
		}
		writeAttr(b, "style", strings.Join(decls, "; "))
	}
	for _, a := range e.attrs {
		writeAttr(b, a.Name, a.Value)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(e.text))
	for _, c := range e.children {
		c.writeHTML(b)
	}
	b.WriteString("</" + e.tag + ">")
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" " + name + `="` + html.EscapeString(value) + `"`)
}

func setProperty(props []Property, name, value string) []Property {
	for i := range props {
		if props[i].Name == name {
			props[i].Value = value
			return props
		}
	}
	return append(props, Property{Name: name, Value: value})
}

func lookup(props []Property, name string) string {
	for _, p := range props {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}
