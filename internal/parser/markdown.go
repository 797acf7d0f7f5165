package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser extracts fenced and indented code blocks using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := &Document{
		Title:    titleFor(filename),
		Filename: filename,
	}

	var heading string
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading = strings.TrimSpace(string(node.Text(src)))
			if node.Level == 1 && doc.Title == titleFor(filename) && heading != "" {
				doc.Title = heading
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := string(node.Language(src))
			var meta string
			if node.Info != nil {
				info := strings.TrimSpace(string(node.Info.Segment.Value(src)))
				meta = strings.TrimSpace(strings.TrimPrefix(info, lang))
			}
			doc.Blocks = append(doc.Blocks, Block{
				Lang:    lang,
				Meta:    meta,
				Heading: heading,
				Line:    firstLine(node, src),
				Source:  blockText(node, src),
			})
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			doc.Blocks = append(doc.Blocks, Block{
				Heading: heading,
				Line:    firstLine(node, src),
				Source:  blockText(node, src),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// blockText joins the raw lines of a code block.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

func firstLine(n ast.Node, src []byte) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}
