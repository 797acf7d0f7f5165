package hast

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts n into an x/net/html node tree.
func ToHTML(n Node) *html.Node {
	switch t := n.(type) {
	case *Element:
		hn := &html.Node{
			Type:     html.ElementNode,
			Data:     t.Tag,
			DataAtom: atom.Lookup([]byte(t.Tag)),
		}
		if len(t.Class) > 0 {
			hn.Attr = append(hn.Attr, html.Attribute{Key: "class", Val: strings.Join(t.Class, " ")})
		}
		for _, a := range t.Attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		for _, c := range t.Children {
			if hc := ToHTML(c); hc != nil {
				hn.AppendChild(hc)
			}
		}
		return hn
	case *Text:
		return &html.Node{Type: html.TextNode, Data: t.Value}
	case *Raw:
		return &html.Node{Type: html.CommentNode, Data: t.Value}
	}
	return nil
}

// FromHTML converts an x/net/html node into a tree node. Document and
// doctype nodes come back as Raw.
func FromHTML(hn *html.Node) Node {
	switch hn.Type {
	case html.ElementNode:
		e := &Element{Tag: hn.Data}
		for _, a := range hn.Attr {
			if a.Key == "class" {
				e.Class = strings.Fields(a.Val)
				continue
			}
			e.Attrs = append(e.Attrs, Attr{Key: a.Key, Val: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			e.Children = append(e.Children, FromHTML(c))
		}
		return e
	case html.TextNode:
		return &Text{Value: hn.Data}
	default:
		return &Raw{Value: hn.Data}
	}
}

// Render writes the HTML serialization of nodes to w.
func Render(w io.Writer, nodes ...Node) error {
	for _, n := range nodes {
		hn := ToHTML(n)
		if hn == nil {
			continue
		}
		if err := html.Render(w, hn); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(nodes ...Node) (string, error) {
	var buf strings.Builder
	if err := Render(&buf, nodes...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseHTML parses an HTML fragment, such as the inside of a highlighted
// <code> element, into a node list.
func ParseHTML(r io.Reader) ([]Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	nodes := make([]Node, 0, len(parsed))
	for _, hn := range parsed {
		nodes = append(nodes, FromHTML(hn))
	}
	return nodes, nil
}
