package codeblock

import (
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// tokens builds a highlighter-like node list from source text: everything
// from "//" to the end of a line becomes a comment token.
func tokens(src string) []hast.Node {
	var nodes []hast.Node
	for i, line := range strings.Split(src, "\n") {
		if i > 0 {
			nodes = append(nodes, hast.NewText("\n"))
		}
		code, comment, found := strings.Cut(line, "//")
		if code != "" {
			nodes = append(nodes, hast.NewText(code))
		}
		if found {
			nodes = append(nodes, hast.Span("//"+comment, "c1", DefaultCommentClass))
		}
	}
	return nodes
}

func lineTexts(lines []*Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}

// wsLine builds an already whitespace-wrapped line.
func wsLine(text string, sections ...string) *Line {
	return &Line{Children: wrapText(text), Sections: sections}
}

func markers(nodes []hast.Node, class string) []*hast.Element {
	var out []*hast.Element
	var walk func(hast.Node)
	walk = func(n hast.Node) {
		e, ok := n.(*hast.Element)
		if !ok {
			return
		}
		if e.HasClass(class) {
			out = append(out, e)
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}
