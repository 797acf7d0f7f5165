package codeblock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// RenderOptions controls presentation of a transformed block.
type RenderOptions struct {
	Section         string // section to isolate, if any
	IsolateContext  bool   // drop context lines and strip the common indent
	ShowLineNumbers bool
}

// Render isolates the requested section and assembles the block into
//
//	div.code-block > div.line-numbers > span.line-number…
//	               > pre.code > code > span.line…
//
// The block itself is not modified.
func Render(b *Block, opts RenderOptions) (*hast.Element, error) {
	split, err := SplitSection(b.Lines, opts.Section, opts.IsolateContext)
	if err != nil {
		return nil, err
	}

	root := hast.NewElement("div", ClassCodeBlock)
	if opts.ShowLineNumbers {
		root.AddClass(ClassShowLineNumbers)
	}
	if opts.Section != "" {
		root.Set(AttrSection, opts.Section)
	}
	if !opts.IsolateContext && split.Indent.Text != "" {
		root.Set("style", fmt.Sprintf("%s: %d; %s: %d",
			PropIndentSpaces, split.Indent.Spaces, PropIndentTabs, split.Indent.Tabs))
	}

	numbers := hast.NewElement("div", ClassLineNumbers)
	numbers.Set("aria-hidden", "true")
	code := hast.NewElement("code")
	for i, l := range split.Lines {
		num := hast.Span(strconv.Itoa(split.FirstLine+i), ClassLineNumber)
		num.Class = append(num.Class, l.Class...)
		if len(l.Sections) > 0 {
			num.Set(AttrSection, strings.Join(l.Sections, " "))
		}
		numbers.Append(num)

		if i > 0 {
			code.Append(hast.NewText("\n"))
		}
		code.Append(lineElement(l))
	}

	pre := hast.NewElement("pre", ClassCode)
	pre.Append(code)
	root.Append(numbers, pre)
	return root, nil
}

func lineElement(l *Line) *hast.Element {
	e := hast.NewElement("span", ClassLine)
	e.Class = append(e.Class, l.Class...)
	if len(l.Sections) > 0 {
		e.Set(AttrSection, strings.Join(l.Sections, " "))
	}
	if l.Redacted {
		e.Set(AttrRedacted, "")
	}
	if l.ContentIndent {
		e.Set(AttrContentIndent, "")
	}
	e.Children = hast.CloneAll(l.Children)
	return e
}
