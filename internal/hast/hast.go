// Package hast is the in-memory tree shared by the highlighter, the line
// pipeline and the serializers.
//
// A Node is exactly one of *Element, *Text or *Raw. Raw holds anything the
// pipeline has no use for (comments, doctypes) so that every pass can drop it
// through an explicit branch instead of guessing at shapes.
package hast

import "strings"

// Node is a node of the tree.
type Node interface {
	node()
}

// Attr is a single element attribute. Attributes keep insertion order so
// serialized output is deterministic.
type Attr struct {
	Key string
	Val string
}

// Element is a tag with classes, attributes and children.
type Element struct {
	Tag      string
	Class    []string
	Attrs    []Attr
	Children []Node
}

// Text is a run of plain text.
type Text struct {
	Value string
}

// Raw is any other node kind, carried through untouched.
type Raw struct {
	Value string
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Raw) node()     {}

// NewElement returns an element with the given tag and classes.
func NewElement(tag string, class ...string) *Element {
	return &Element{Tag: tag, Class: class}
}

// NewText returns a text node.
func NewText(s string) *Text {
	return &Text{Value: s}
}

// Span is shorthand for a span element holding a single text child.
func Span(text string, class ...string) *Element {
	e := NewElement("span", class...)
	e.Children = []Node{NewText(text)}
	return e
}

// HasClass reports whether e carries class c.
func (e *Element) HasClass(c string) bool {
	for _, cl := range e.Class {
		if cl == c {
			return true
		}
	}
	return false
}

// AddClass appends c unless it is already present.
func (e *Element) AddClass(c string) {
	if !e.HasClass(c) {
		e.Class = append(e.Class, c)
	}
}

// Get returns the value of attribute key.
func (e *Element) Get(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Set sets attribute key, replacing an existing value in place.
func (e *Element) Set(key, val string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Val = val
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Val: val})
}

// Append adds children to e.
func (e *Element) Append(children ...Node) {
	e.Children = append(e.Children, children...)
}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch t := n.(type) {
	case *Element:
		c := &Element{Tag: t.Tag}
		if t.Class != nil {
			c.Class = append([]string(nil), t.Class...)
		}
		if t.Attrs != nil {
			c.Attrs = append([]Attr(nil), t.Attrs...)
		}
		c.Children = CloneAll(t.Children)
		return c
	case *Text:
		return &Text{Value: t.Value}
	case *Raw:
		return &Raw{Value: t.Value}
	}
	return nil
}

// CloneAll deep-copies a node list.
func CloneAll(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if c := Clone(n); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// TextContent concatenates the text of n and its descendants.
func TextContent(n Node) string {
	var buf strings.Builder
	var extract func(Node)
	extract = func(n Node) {
		switch t := n.(type) {
		case *Text:
			buf.WriteString(t.Value)
		case *Element:
			for _, c := range t.Children {
				extract(c)
			}
		}
	}
	extract(n)
	return buf.String()
}

// TextContentAll is TextContent over a node list.
func TextContentAll(nodes []Node) string {
	var buf strings.Builder
	for _, n := range nodes {
		buf.WriteString(TextContent(n))
	}
	return buf.String()
}
