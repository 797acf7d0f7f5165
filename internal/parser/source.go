package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// SourceParser reads a whole file as one code block.
type SourceParser struct{}

func (p *SourceParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%s: not valid UTF-8 text", filename)
	}

	doc := &Document{
		Title:    titleFor(filename),
		Filename: filename,
	}
	// Windows line endings would leave a stray \r on every line.
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}

	doc.Blocks = []Block{{Source: text, Line: 1}}
	return doc, nil
}
