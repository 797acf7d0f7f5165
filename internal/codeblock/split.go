package codeblock

import (
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// Indent is the leading whitespace shared by every content line.
type Indent struct {
	Text   string
	Spaces int
	Tabs   int
}

// Split is the result of isolating one section.
type Split struct {
	Content       []*Line
	ContextBefore []*Line
	ContextAfter  []*Line
	Indent        Indent

	// Lines is what gets rendered: every line, or only Content when the
	// context was discarded.
	Lines []*Line
	// FirstLine is the source number of Lines[0].
	FirstLine int
}

// SplitSection isolates section name. Content lines run from the first to
// the last line that belongs to the section; lines before and after are
// context. The input lines are not modified.
//
// With discardContext the common indent is removed from each content line
// and only content is kept. Otherwise the indent markers of each content
// line are wrapped in a single content-indent token.
//
// An empty name, or a section covering every line, returns the input as is.
func SplitSection(lines []*Line, name string, discardContext bool) (*Split, error) {
	identity := &Split{Content: lines, Lines: lines, FirstLine: 1}
	if name == "" {
		return identity, nil
	}

	first, last := -1, -1
	for i, l := range lines {
		if l.InSection(name) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil, &SectionNotFoundError{Name: name}
	}
	if first == 0 && last == len(lines)-1 {
		return identity, nil
	}

	all := cloneLines(lines)
	s := &Split{
		ContextBefore: all[:first],
		Content:       all[first : last+1],
		ContextAfter:  all[last+1:],
	}
	for _, l := range s.ContextBefore {
		l.addClass(ClassSectionContext)
	}
	for _, l := range s.ContextAfter {
		l.addClass(ClassSectionContext)
	}
	for _, l := range s.Content {
		l.addClass(ClassSectionContent)
	}

	s.Indent = commonIndent(s.Content)
	n := len(s.Indent.Text)
	if discardContext {
		for _, l := range s.Content {
			l.Children = l.Children[n:]
		}
		s.Lines = s.Content
		s.FirstLine = first + 1
		return s, nil
	}

	if n > 0 {
		for _, l := range s.Content {
			wrapper := hast.NewElement("span", ClassContentIndent)
			wrapper.Children = append([]hast.Node(nil), l.Children[:n]...)
			l.Children = append([]hast.Node{wrapper}, l.Children[n:]...)
			l.ContentIndent = true
		}
	}
	s.Lines = all
	s.FirstLine = 1
	return s, nil
}

// commonIndent finds the longest run of leading whitespace markers that
// every line shares character for character.
func commonIndent(lines []*Line) Indent {
	if len(lines) == 0 {
		return Indent{}
	}
	var buf strings.Builder
	for pos := 0; ; pos++ {
		var want byte
		for i, l := range lines {
			if pos >= len(l.Children) {
				return newIndent(buf.String())
			}
			c := whitespaceChar(l.Children[pos])
			if c == 0 || (i > 0 && c != want) {
				return newIndent(buf.String())
			}
			want = c
		}
		buf.WriteByte(want)
	}
}

func newIndent(text string) Indent {
	return Indent{
		Text:   text,
		Spaces: strings.Count(text, " "),
		Tabs:   strings.Count(text, "\t"),
	}
}
