package codeblock

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// AnnotationMode selects what happens to [!name args] directives.
type AnnotationMode string

const (
	// ModeStrip extracts directives and removes them from the output.
	ModeStrip AnnotationMode = "strip"
	// ModeRetain extracts directives and leaves their text visible.
	ModeRetain AnnotationMode = "retain"
	// ModeIgnore does not look for directives at all.
	ModeIgnore AnnotationMode = "ignore"
)

// ParseAnnotationMode validates a mode name. The empty string means strip.
func ParseAnnotationMode(s string) (AnnotationMode, error) {
	switch AnnotationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrip:
		return ModeStrip, nil
	case ModeRetain:
		return ModeRetain, nil
	case ModeIgnore:
		return ModeIgnore, nil
	}
	return "", fmt.Errorf("unknown annotation mode %q (want strip, retain or ignore)", s)
}

// Annotation is a directive found in a comment.
type Annotation struct {
	Name string
	Args string
	Line int // 1-based
}

var annotationRe = regexp.MustCompile(`\[!([a-zA-Z0-9-]+)\s*([^\]]*)\]`)

// ParseAnnotations collects the directives of every line. The result is
// indexed like lines. In strip mode the directive text is removed, along
// with a comment token left holding only comment punctuation and the
// {…} wrapper around it in JSX-style comments. A directive must sit within
// one text run of the comment token; one split across text nodes is not
// recognized.
func ParseAnnotations(lines []*Line, mode AnnotationMode, commentClass string) [][]Annotation {
	out := make([][]Annotation, len(lines))
	if mode == ModeIgnore {
		return out
	}
	if commentClass == "" {
		commentClass = DefaultCommentClass
	}
	for i, line := range lines {
		p := &annotationParser{mode: mode, commentClass: commentClass, line: i + 1}
		line.Children = p.scan(line.Children)
		out[i] = p.found
	}
	return out
}

type annotationParser struct {
	mode         AnnotationMode
	commentClass string
	line         int
	found        []Annotation
}

func (p *annotationParser) scan(nodes []hast.Node) []hast.Node {
	drop := make([]bool, len(nodes))
	for j, n := range nodes {
		e, ok := n.(*hast.Element)
		if !ok {
			continue
		}
		if !e.HasClass(p.commentClass) {
			e.Children = p.scan(e.Children)
			continue
		}
		if !p.comment(e) || p.mode != ModeStrip || !onlyCommentMarkers(hast.TextContent(e)) {
			continue
		}
		drop[j] = true
		if j > 0 && j+1 < len(nodes) && isLiteral(nodes[j-1], "{") && isLiteral(nodes[j+1], "}") {
			drop[j-1] = true
			drop[j+1] = true
		}
	}

	out := nodes[:0]
	for j, n := range nodes {
		if !drop[j] {
			out = append(out, n)
		}
	}
	return out
}

// comment extracts the directives of a comment token and reports whether
// there were any.
func (p *annotationParser) comment(e *hast.Element) bool {
	found := false
	var walk func(hast.Node)
	walk = func(n hast.Node) {
		switch t := n.(type) {
		case *hast.Text:
			locs := annotationRe.FindAllStringSubmatchIndex(t.Value, -1)
			if len(locs) == 0 {
				return
			}
			found = true
			for _, loc := range locs {
				p.found = append(p.found, Annotation{
					Name: t.Value[loc[2]:loc[3]],
					Args: strings.TrimSpace(t.Value[loc[4]:loc[5]]),
					Line: p.line,
				})
			}
			if p.mode == ModeStrip {
				t.Value = annotationRe.ReplaceAllString(t.Value, "")
			}
		case *hast.Element:
			for _, c := range t.Children {
				walk(c)
			}
		case *hast.Raw:
		}
	}
	walk(e)
	return found
}

func onlyCommentMarkers(s string) bool {
	return strings.Trim(s, " \t/*#;-!<>%") == ""
}

func isLiteral(n hast.Node, lit string) bool {
	e, ok := n.(*hast.Element)
	if !ok || len(e.Children) != 1 {
		return false
	}
	t, ok := e.Children[0].(*hast.Text)
	return ok && t.Value == lit
}
