// Package htmlnode provides a small HTML builder tree. Renderers assemble
// elements instead of concatenating markup strings; attribute and text content
// is escaped at serialisation time, and tests assert on tree shape through the
// query helpers.
package htmlnode

import (
	"html"
	"sort"
	"strings"
)

// Node is either an element or a text run.
type Node interface {
	write(b *strings.Builder)
}

// Text is an escaped text run.
type Text string

func (t Text) write(b *strings.Builder) {
	b.WriteString(html.EscapeString(string(t)))
}

// Raw is a pre-sanitised markup run written verbatim. Callers own the
// sanitisation; the only producers in this module run bluemonday first.
type Raw string

func (r Raw) write(b *strings.Builder) {
	b.WriteString(string(r))
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {},
	"img": {}, "input": {}, "link": {}, "meta": {}, "source": {}, "track": {},
	"wbr": {},
}

// Element is one HTML element with attributes, classes, and children.
type Element struct {
	Tag      string
	attrs    map[string]string
	classes  []string
	Children []Node
}

// El constructs an element with optional children.
func El(tag string, children ...Node) *Element {
	return &Element{Tag: tag, Children: children}
}

// Attr sets an attribute, replacing any prior value. Returns the element for
// chaining.
func (e *Element) Attr(name, value string) *Element {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
	return e
}

// BoolAttr sets a valueless attribute (required, checked, ...) when on is
// true.
func (e *Element) BoolAttr(name string, on bool) *Element {
	if on {
		e.Attr(name, "")
	}
	return e
}

// Class appends CSS classes, skipping empties.
func (e *Element) Class(classes ...string) *Element {
	for _, c := range classes {
		if strings.TrimSpace(c) != "" {
			e.classes = append(e.classes, c)
		}
	}
	return e
}

// Add appends child nodes, skipping nils.
func (e *Element) Add(children ...Node) *Element {
	for _, child := range children {
		if child == nil {
			continue
		}
		if el, ok := child.(*Element); ok && el == nil {
			continue
		}
		e.Children = append(e.Children, child)
	}
	return e
}

// AddText appends an escaped text child when text is non-empty.
func (e *Element) AddText(text string) *Element {
	if text != "" {
		e.Children = append(e.Children, Text(text))
	}
	return e
}

// AttrValue returns the attribute value and whether it is set. The class list
// is reported under "class".
func (e *Element) AttrValue(name string) (string, bool) {
	if name == "class" {
		if len(e.classes) == 0 {
			return "", false
		}
		return strings.Join(e.classes, " "), true
	}
	value, ok := e.attrs[name]
	return value, ok
}

// HasClass reports whether the element carries the given class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) write(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)

	if len(e.classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(html.EscapeString(strings.Join(e.classes, " ")))
		b.WriteByte('"')
	}

	if len(e.attrs) > 0 {
		names := make([]string, 0, len(e.attrs))
		for name := range e.attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteByte(' ')
			b.WriteString(name)
			if value := e.attrs[name]; value != "" {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(value))
				b.WriteByte('"')
			}
		}
	}

	if _, void := voidElements[e.Tag]; void && len(e.Children) == 0 {
		b.WriteString(" />")
		return
	}

	b.WriteByte('>')
	for _, child := range e.Children {
		child.write(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

// Render serialises the element to HTML.
func (e *Element) Render() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

// Render serialises any node to HTML.
func Render(n Node) string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

// Find returns the first descendant (including e itself) matching the
// predicate, depth-first.
func (e *Element) Find(match func(*Element) bool) *Element {
	if match(e) {
		return e
	}
	for _, child := range e.Children {
		el, ok := child.(*Element)
		if !ok {
			continue
		}
		if found := el.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every matching descendant in document order.
func (e *Element) FindAll(match func(*Element) bool) []*Element {
	var out []*Element
	if match(e) {
		out = append(out, e)
	}
	for _, child := range e.Children {
		if el, ok := child.(*Element); ok {
			out = append(out, el.FindAll(match)...)
		}
	}
	return out
}

// ByTag matches elements by tag name.
func ByTag(tag string) func(*Element) bool {
	return func(e *Element) bool { return e.Tag == tag }
}

// ByAttr matches elements carrying the exact attribute value.
func ByAttr(name, value string) func(*Element) bool {
	return func(e *Element) bool {
		got, ok := e.AttrValue(name)
		return ok && got == value
	}
}

// TextContent concatenates all text runs under the element.
func (e *Element) TextContent() string {
	var b strings.Builder
	var walk func(n Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Text:
			b.WriteString(string(v))
		case *Element:
			for _, child := range v.Children {
				walk(child)
			}
		}
	}
	walk(e)
	return b.String()
}
