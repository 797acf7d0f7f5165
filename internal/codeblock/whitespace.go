package codeblock

import (
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// WrapWhitespace replaces every space and tab in the lines' text runs with
// its own marker token. Redaction markers and existing whitespace markers
// are left alone.
func WrapWhitespace(lines []*Line) {
	for _, line := range lines {
		line.Children = wrapNodes(line.Children)
	}
}

func wrapNodes(nodes []hast.Node) []hast.Node {
	out := make([]hast.Node, 0, len(nodes))
	for _, n := range nodes {
		switch t := n.(type) {
		case *hast.Text:
			out = append(out, wrapText(t.Value)...)
		case *hast.Element:
			if !isRedaction(t) && !isWhitespaceMarker(t) {
				t.Children = wrapNodes(t.Children)
			}
			out = append(out, t)
		case *hast.Raw:
			out = append(out, t)
		}
	}
	return out
}

func wrapText(s string) []hast.Node {
	if !strings.ContainsAny(s, " \t") {
		return []hast.Node{hast.NewText(s)}
	}
	var out []hast.Node
	start := 0
	for i := 0; i < len(s); i++ {
		var class string
		switch s[i] {
		case ' ':
			class = ClassSpace
		case '\t':
			class = ClassTab
		default:
			continue
		}
		if start < i {
			out = append(out, hast.NewText(s[start:i]))
		}
		out = append(out, hast.Span(s[i:i+1], class))
		start = i + 1
	}
	if start < len(s) {
		out = append(out, hast.NewText(s[start:]))
	}
	return out
}

func isWhitespaceMarker(e *hast.Element) bool {
	return e.HasClass(ClassSpace) || e.HasClass(ClassTab)
}

// whitespaceChar returns the character of a whitespace marker, or 0.
func whitespaceChar(n hast.Node) byte {
	e, ok := n.(*hast.Element)
	if !ok {
		return 0
	}
	switch {
	case e.HasClass(ClassSpace):
		return ' '
	case e.HasClass(ClassTab):
		return '\t'
	}
	return 0
}
