// Package render ties the highlighter, the code block transform and the
// HTML serializer together.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/parser"
	"github.com/kballard/go-shellquote"
)

// Renderer renders code blocks with a fixed set of transform options.
type Renderer struct {
	Highlighter *highlight.Highlighter
	Options     codeblock.Options
}

func New(h *highlight.Highlighter, opts codeblock.Options) *Renderer {
	return &Renderer{Highlighter: h, Options: opts}
}

// Block highlights source as lang and renders it. An unknown or empty
// lang renders plain text.
func (r *Renderer) Block(source, lang string, opts codeblock.RenderOptions) (*hast.Element, error) {
	return r.blockFor(source, r.Highlighter.FlagToScope(lang), opts)
}

// File is Block with the language taken from a filename.
func (r *Renderer) File(source, filename string, opts codeblock.RenderOptions) (*hast.Element, error) {
	return r.blockFor(source, r.Highlighter.ScopeForFile(filename), opts)
}

func (r *Renderer) blockFor(source, scope string, opts codeblock.RenderOptions) (*hast.Element, error) {
	nodes, err := r.Highlighter.Highlight(source, scope)
	if err != nil {
		return nil, fmt.Errorf("highlight: %w", err)
	}
	return r.Tokens(nodes, opts)
}

// Tokens renders an already highlighted token tree.
func (r *Renderer) Tokens(nodes []hast.Node, opts codeblock.RenderOptions) (*hast.Element, error) {
	block, err := codeblock.Transform(nodes, r.Options)
	if err != nil {
		return nil, err
	}
	return Assemble(block, opts)
}

// Transform highlights and transforms source without assembling output, for
// callers that also want the block's sections and directives.
func (r *Renderer) Transform(source, lang string) (*codeblock.Block, error) {
	nodes, err := r.Highlighter.Highlight(source, r.Highlighter.FlagToScope(lang))
	if err != nil {
		return nil, fmt.Errorf("highlight: %w", err)
	}
	return codeblock.Transform(nodes, r.Options)
}

// Assemble renders a transformed block into the themed output tree.
func Assemble(block *codeblock.Block, opts codeblock.RenderOptions) (*hast.Element, error) {
	root, err := codeblock.Render(block, opts)
	if err != nil {
		return nil, err
	}
	root.AddClass(highlight.RootClass)
	return root, nil
}

// HTML is Block serialized to a string.
func (r *Renderer) HTML(source, lang string, opts codeblock.RenderOptions) (string, error) {
	root, err := r.Block(source, lang, opts)
	if err != nil {
		return "", err
	}
	return hast.RenderString(root)
}

// Rendered pairs a parsed block with its output tree.
type Rendered struct {
	Block parser.Block
	Root  *hast.Element
}

// Document renders every block of doc. Fence metadata on a block
// overrides defaults. The first failing block aborts the whole document.
func (r *Renderer) Document(doc *parser.Document, defaults codeblock.RenderOptions) ([]Rendered, error) {
	out := make([]Rendered, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		opts := ParseMetaWith(b.Meta, defaults)

		var (
			root *hast.Element
			err  error
		)
		switch {
		case b.Highlighted():
			root, err = r.Tokens(b.Tokens, opts)
		case b.Lang == "" && !parser.IsDocument(doc.Filename):
			root, err = r.File(b.Source, doc.Filename, opts)
		default:
			root, err = r.Block(b.Source, b.Lang, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", doc.Filename, b.Line, err)
		}
		out = append(out, Rendered{Block: b, Root: root})
	}
	return out, nil
}

// ParseMeta reads render options from the words after the language of a
// fence info string, e.g. "section=setup isolate lines". Unknown words are
// ignored.
func ParseMeta(meta string) codeblock.RenderOptions {
	return ParseMetaWith(meta, codeblock.RenderOptions{})
}

// ParseMetaWith is ParseMeta starting from defaults. Words are split by
// shell quoting rules, so values may be quoted.
func ParseMetaWith(meta string, defaults codeblock.RenderOptions) codeblock.RenderOptions {
	words, err := shellquote.Split(meta)
	if err != nil {
		// Unbalanced quotes: fall back to plain fields.
		words = strings.Fields(meta)
	}
	opts := defaults
	for _, word := range words {
		key, val, hasVal := strings.Cut(word, "=")
		val = strings.Trim(val, `"'`)
		switch key {
		case "section":
			if hasVal {
				opts.Section = val
			}
		case "isolate":
			opts.IsolateContext = !hasVal || val != "false"
		case "context":
			opts.IsolateContext = false
		case "lines", "line-numbers":
			opts.ShowLineNumbers = !hasVal || val != "false"
		case "nolines":
			opts.ShowLineNumbers = false
		}
	}
	return opts
}
