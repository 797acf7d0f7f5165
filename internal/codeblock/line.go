package codeblock

import (
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// Line is one visual source line. Its number is implied by its position in
// the slice that holds it.
type Line struct {
	Children []hast.Node
	Class    []string

	// Sections lists the sections the line belongs to, in the order they
	// were opened. Empty means none.
	Sections []string

	Redacted      bool
	ContentIndent bool
}

// Text returns the plain text of the line.
func (l *Line) Text() string {
	return hast.TextContentAll(l.Children)
}

// InSection reports whether the line is a member of section name.
func (l *Line) InSection(name string) bool {
	for _, s := range l.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// IsBlank reports whether the line has no visible content.
func (l *Line) IsBlank() bool {
	for _, c := range l.Children {
		if strings.TrimSpace(hast.TextContent(c)) != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the line.
func (l *Line) Clone() *Line {
	c := &Line{
		Children:      hast.CloneAll(l.Children),
		Redacted:      l.Redacted,
		ContentIndent: l.ContentIndent,
	}
	if l.Class != nil {
		c.Class = append([]string(nil), l.Class...)
	}
	if l.Sections != nil {
		c.Sections = append([]string(nil), l.Sections...)
	}
	return c
}

func (l *Line) addClass(class string) {
	for _, c := range l.Class {
		if c == class {
			return
		}
	}
	l.Class = append(l.Class, class)
}

func cloneLines(lines []*Line) []*Line {
	out := make([]*Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clone()
	}
	return out
}

// SegmentLines splits a highlighted node list into lines at newline
// boundaries. Tokens without newlines are kept whole; a token spanning
// several lines is split into one copy per line. A newline that ends the
// input does not open a final empty line.
func SegmentLines(nodes []hast.Node) []*Line {
	if len(nodes) == 0 {
		return nil
	}

	var lines []*Line
	cur := &Line{}
	for _, n := range nodes {
		for i, piece := range splitLines(n) {
			if i > 0 {
				lines = append(lines, cur)
				cur = &Line{}
			}
			if piece != nil {
				cur.Children = append(cur.Children, piece)
			}
		}
	}
	if len(cur.Children) > 0 || !endsWithNewline(nodes) {
		lines = append(lines, cur)
	}
	return lines
}

// splitLines returns the per-line pieces of n. Piece i+1 starts after the
// i-th newline; nil pieces carry no content.
func splitLines(n hast.Node) []hast.Node {
	switch t := n.(type) {
	case *hast.Text:
		parts := strings.Split(t.Value, "\n")
		out := make([]hast.Node, len(parts))
		for i, p := range parts {
			if p != "" {
				out[i] = hast.NewText(p)
			}
		}
		return out
	case *hast.Element:
		if !strings.Contains(hast.TextContent(t), "\n") {
			return []hast.Node{t}
		}
		var out []hast.Node
		cur := shallowCopy(t)
		for _, c := range t.Children {
			for i, piece := range splitLines(c) {
				if i > 0 {
					out = append(out, nonEmpty(cur))
					cur = shallowCopy(t)
				}
				if piece != nil {
					cur.Children = append(cur.Children, piece)
				}
			}
		}
		return append(out, nonEmpty(cur))
	case *hast.Raw:
		// Not part of the visible code.
		return []hast.Node{nil}
	}
	return []hast.Node{nil}
}

func shallowCopy(e *hast.Element) *hast.Element {
	c := &hast.Element{Tag: e.Tag}
	if e.Class != nil {
		c.Class = append([]string(nil), e.Class...)
	}
	if e.Attrs != nil {
		c.Attrs = append([]hast.Attr(nil), e.Attrs...)
	}
	return c
}

func nonEmpty(e *hast.Element) hast.Node {
	if len(e.Children) == 0 {
		return nil
	}
	return e
}

func endsWithNewline(nodes []hast.Node) bool {
	for i := len(nodes) - 1; i >= 0; i-- {
		if _, ok := nodes[i].(*hast.Raw); ok {
			continue
		}
		return strings.HasSuffix(hast.TextContent(nodes[i]), "\n")
	}
	return false
}

// TrimBlankLines drops blank lines at both edges and collapses interior
// runs of blank lines to a single one.
func TrimBlankLines(lines []*Line) []*Line {
	start, end := 0, len(lines)
	for start < end && lines[start].IsBlank() {
		start++
	}
	for end > start && lines[end-1].IsBlank() {
		end--
	}

	out := make([]*Line, 0, end-start)
	prevBlank := false
	for _, l := range lines[start:end] {
		blank := l.IsBlank()
		if blank && prevBlank {
			continue
		}
		out = append(out, l)
		prevBlank = blank
	}
	return out
}
