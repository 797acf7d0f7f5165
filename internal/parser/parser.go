package parser

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/codelines/internal/hast"
)

// Document is the list of code blocks found in one input file.
type Document struct {
	Title    string
	Filename string
	Blocks   []Block
}

// Block is one code block awaiting rendering. Either Source or Tokens is
// set: Tokens holds an already highlighted token tree.
type Block struct {
	Lang    string // language flag as written, may be empty
	Meta    string // rest of a fence info string
	Heading string // closest heading above the block
	Line    int    // 1-based line of the block in its file, 0 if unknown

	Source string
	Tokens []hast.Node
}

// Highlighted reports whether b carries a token tree.
func (b Block) Highlighted() bool {
	return b.Tokens != nil
}

// Parser extracts code blocks from raw file bytes.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// DocumentExtensions lists the extensions parsed as documents holding
// code blocks. Everything else is read as a single source file.
var DocumentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{}
	case ".html", ".htm":
		return &HTMLParser{}
	default:
		return &SourceParser{}
	}
}

// IsDocument checks if a file is parsed as a document of code blocks.
func IsDocument(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return DocumentExtensions[ext]
}

func titleFor(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
