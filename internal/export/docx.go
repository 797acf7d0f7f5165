// Package export writes rendered code blocks in formats other than HTML.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/fumiama/go-docx"
)

const (
	contextColour   = "999999"
	lineNumberColor = "aaaaaa"
)

// DOCXOptions controls the document written by DOCX.
type DOCXOptions struct {
	FontSize int // points, default 10
	TabWidth int // spaces per tab, default 4
}

// DOCX writes the code blocks (as returned by render) to w, one paragraph
// per line. Token colours come from style.
func DOCX(w io.Writer, style *chroma.Style, opts DOCXOptions, roots ...*hast.Element) error {
	if opts.FontSize <= 0 {
		opts.FontSize = 10
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	size := fmt.Sprint(opts.FontSize * 2) // half-points

	doc := docx.New().WithDefaultTheme()
	for i, root := range roots {
		if i > 0 {
			doc.AddParagraph()
		}
		lines := Lines(root)
		width := len(fmt.Sprint(len(lines)))
		for _, l := range lines {
			para := doc.AddParagraph()
			if l.Number != "" {
				para.AddText(fmt.Sprintf("%*s  ", width, l.Number)).Color(lineNumberColor).Size(size)
			}
			for _, r := range l.Runs {
				text := strings.ReplaceAll(r.Text, "\t", strings.Repeat(" ", opts.TabWidth))
				run := para.AddText(text).Size(size)
				r.apply(run, style, l.Context)
			}
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// Line is one output line of a rendered block.
type Line struct {
	Number  string // empty when line numbers are off
	Context bool   // outside the displayed section
	Runs    []Run
}

// Text returns the visible text of the line.
func (l Line) Text() string {
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Run is a stretch of text sharing one token type.
type Run struct {
	Text     string
	Type     chroma.TokenType
	Redacted bool
}

func (r Run) apply(run *docx.Run, style *chroma.Style, context bool) {
	if context {
		run.Color(contextColour)
		return
	}
	if r.Redacted {
		run.Color(contextColour).Italic()
		return
	}
	if style == nil || r.Type == chroma.None {
		return
	}
	entry := style.Get(r.Type)
	if entry.Colour.IsSet() {
		run.Color(strings.TrimPrefix(entry.Colour.String(), "#"))
	}
	if entry.Bold == chroma.Yes {
		run.Bold()
	}
	if entry.Italic == chroma.Yes {
		run.Italic()
	}
}

// Lines flattens the span.line elements of a rendered block into runs.
func Lines(root *hast.Element) []Line {
	var numbers []string
	if root.HasClass(codeblock.ClassShowLineNumbers) {
		for _, n := range findClass(root, codeblock.ClassLineNumber) {
			numbers = append(numbers, hast.TextContent(n))
		}
	}

	var lines []Line
	for i, el := range findClass(root, codeblock.ClassLine) {
		l := Line{Context: el.HasClass(codeblock.ClassSectionContext)}
		if i < len(numbers) {
			l.Number = numbers[i]
		}
		l.Runs = collectRuns(nil, el.Children, chroma.None, false)
		lines = append(lines, l)
	}
	return lines
}

func collectRuns(runs []Run, nodes []hast.Node, t chroma.TokenType, redacted bool) []Run {
	for _, n := range nodes {
		switch v := n.(type) {
		case *hast.Text:
			runs = appendRun(runs, Run{Text: v.Value, Type: t, Redacted: redacted})
		case *hast.Element:
			ct, red := t, redacted
			if tt, ok := highlight.TokenType(v.Class); ok {
				ct = tt
			}
			if v.HasClass(codeblock.ClassRedaction) {
				red = true
			}
			runs = collectRuns(runs, v.Children, ct, red)
		}
	}
	return runs
}

func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Type == r.Type && runs[n-1].Redacted == r.Redacted {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}

func findClass(n hast.Node, class string) []*hast.Element {
	e, ok := n.(*hast.Element)
	if !ok {
		return nil
	}
	if e.HasClass(class) {
		return []*hast.Element{e}
	}
	var out []*hast.Element
	for _, c := range e.Children {
		out = append(out, findClass(c, class)...)
	}
	return out
}

// PlainText returns the visible code of a rendered block, one line per
// line, without line numbers.
func PlainText(root *hast.Element) string {
	var b strings.Builder
	for _, l := range Lines(root) {
		b.WriteString(l.Text())
		b.WriteByte('\n')
	}
	return b.String()
}
