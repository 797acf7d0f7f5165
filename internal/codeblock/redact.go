package codeblock

import (
	"regexp"
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// Match is one pattern match against a line's text.
type Match struct {
	Text   string   // full match
	Groups []string // Groups[0] is the full match, then capture groups
	Start  int      // byte offsets into the line text
	End    int

	re  *regexp.Regexp
	src string
	loc []int
}

// Expand expands a regexp template such as "<$1>" against the match.
func (m Match) Expand(template string) string {
	if m.re == nil {
		return template
	}
	return string(m.re.ExpandString(nil, template, m.src, m.loc))
}

// ReplaceFunc returns the visible content of a redaction marker. A non-nil
// error aborts the whole transform and is returned unchanged.
type ReplaceFunc func(m Match) ([]hast.Node, error)

// ReplaceText adapts a string-producing function to a ReplaceFunc.
func ReplaceText(fn func(m Match) string) ReplaceFunc {
	return func(m Match) ([]hast.Node, error) {
		s := fn(m)
		if s == "" {
			return nil, nil
		}
		return []hast.Node{hast.NewText(s)}, nil
	}
}

// RedactionRule hides every match of its patterns behind a marker token
// tagged with the rule name.
type RedactionRule struct {
	Name     string
	Patterns []*regexp.Regexp
	Replace  ReplaceFunc // nil leaves the marker empty
}

// Redact applies rules to every line in place. Matching runs over the
// concatenated text of a line, so a match may straddle several tokens;
// the covered nodes are replaced by a single marker.
func Redact(lines []*Line, rules []RedactionRule) error {
	for _, line := range lines {
		for _, rule := range rules {
			for _, re := range rule.Patterns {
				if err := redactPattern(line, rule, re); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func redactPattern(line *Line, rule RedactionRule, re *regexp.Regexp) error {
	type splice struct {
		start, end int
		content    []hast.Node
	}
	// Replacements are computed left to right so callbacks see matches in
	// source order, then spliced right to left to keep offsets valid.
	var splices []splice
	for _, seg := range visibleSegments(line.Children) {
		for _, loc := range re.FindAllStringSubmatchIndex(seg.text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			m := newMatch(re, seg.text, loc)
			m.Start += seg.start
			m.End += seg.start
			var content []hast.Node
			if rule.Replace != nil {
				var err error
				content, err = rule.Replace(m)
				if err != nil {
					return err
				}
			}
			splices = append(splices, splice{start: m.Start, end: m.End, content: content})
		}
	}

	for i := len(splices) - 1; i >= 0; i-- {
		s := splices[i]
		marker := hast.NewElement("span", ClassRedaction)
		marker.Set(AttrRedaction, rule.Name)
		marker.Children = s.content

		left, rest := splitAt(line.Children, s.start, true)
		_, right := splitAt(rest, s.end-s.start, false)

		children := make([]hast.Node, 0, len(left)+1+len(right))
		children = append(children, left...)
		children = append(children, marker)
		children = append(children, right...)
		line.Children = children
		line.Redacted = true
	}
	return nil
}

func newMatch(re *regexp.Regexp, src string, loc []int) Match {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = src[loc[2*i]:loc[2*i+1]]
		}
	}
	return Match{
		Text:   groups[0],
		Groups: groups,
		Start:  loc[0],
		End:    loc[1],
		re:     re,
		src:    src,
		loc:    loc,
	}
}

func isRedaction(e *hast.Element) bool {
	return e.HasClass(ClassRedaction)
}

// segment is a stretch of visible text between redaction markers. start is
// its offset in the line's visible text.
type segment struct {
	start int
	text  string
}

// visibleSegments splits the text a pattern is matched against at every
// existing redaction marker. Markers are opaque and zero width, and no
// match may span one.
func visibleSegments(nodes []hast.Node) []segment {
	var (
		segs []segment
		buf  strings.Builder
		pos  int
	)
	flush := func() {
		if buf.Len() > 0 {
			segs = append(segs, segment{start: pos - buf.Len(), text: buf.String()})
			buf.Reset()
		}
	}
	var walk func(hast.Node)
	walk = func(n hast.Node) {
		switch t := n.(type) {
		case *hast.Text:
			buf.WriteString(t.Value)
			pos += len(t.Value)
		case *hast.Element:
			if isRedaction(t) {
				flush()
				return
			}
			for _, c := range t.Children {
				walk(c)
			}
		case *hast.Raw:
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	flush()
	return segs
}

func visibleLen(n hast.Node) int {
	switch t := n.(type) {
	case *hast.Text:
		return len(t.Value)
	case *hast.Element:
		if isRedaction(t) {
			return 0
		}
		w := 0
		for _, c := range t.Children {
			w += visibleLen(c)
		}
		return w
	}
	return 0
}

// splitAt partitions nodes at a visible-text offset, splitting the text run
// or token that straddles it. Zero-width nodes sitting exactly on the
// offset go left when zeroLeft is set and right otherwise.
func splitAt(nodes []hast.Node, offset int, zeroLeft bool) (left, right []hast.Node) {
	pos := 0
	for i, n := range nodes {
		w := visibleLen(n)
		if pos+w < offset || (pos+w == offset && (w > 0 || zeroLeft)) {
			left = append(left, n)
			pos += w
			continue
		}
		if pos >= offset {
			right = append(right, nodes[i:]...)
			return left, right
		}
		l, r := splitNode(n, offset-pos, zeroLeft)
		if l != nil {
			left = append(left, l)
		}
		if r != nil {
			right = append(right, r)
		}
		right = append(right, nodes[i+1:]...)
		return left, right
	}
	return left, right
}

// splitNode splits n at an offset strictly inside its visible text.
func splitNode(n hast.Node, offset int, zeroLeft bool) (hast.Node, hast.Node) {
	switch t := n.(type) {
	case *hast.Text:
		return hast.NewText(t.Value[:offset]), hast.NewText(t.Value[offset:])
	case *hast.Element:
		lc, rc := splitAt(t.Children, offset, zeroLeft)
		l, r := shallowCopy(t), shallowCopy(t)
		l.Children, r.Children = lc, rc
		return nonEmpty(l), nonEmpty(r)
	}
	return n, nil
}
