// Package markdown renders Markdown with goldmark, sending every code
// block through the code block pipeline.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Renders ahead of goldmark's own code block renderer (priority 1000).
const priority = 100

// Extension renders fenced and indented code blocks with a Renderer.
// Options in the fence info string ("go section=x isolate lines")
// override Defaults.
type Extension struct {
	Renderer *render.Renderer
	Defaults codeblock.RenderOptions
}

func New(r *render.Renderer, defaults codeblock.RenderOptions) *Extension {
	return &Extension{Renderer: r, Defaults: defaults}
}

func (e *Extension) Extend(md goldmark.Markdown) {
	md.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(e, priority),
	))
}

func (e *Extension) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, e.renderFenced)
	reg.Register(ast.KindCodeBlock, e.renderIndented)
}

func (e *Extension) renderFenced(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	var meta string
	if n.Info != nil {
		info := strings.TrimSpace(string(n.Info.Segment.Value(source)))
		meta = strings.TrimSpace(strings.TrimPrefix(info, lang))
	}
	return e.write(w, source, n, lang, render.ParseMetaWith(meta, e.Defaults))
}

func (e *Extension) renderIndented(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	return e.write(w, source, node, "", e.Defaults)
}

func (e *Extension) write(w util.BufWriter, source []byte, n ast.Node, lang string, opts codeblock.RenderOptions) (ast.WalkStatus, error) {
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	root, err := e.Renderer.Block(code.String(), lang, opts)
	if err != nil {
		return ast.WalkStop, &BlockError{Line: blockLine(n, source), Err: err}
	}
	if err := hast.Render(w, root); err != nil {
		return ast.WalkStop, err
	}
	if err := w.WriteByte('\n'); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

// BlockError reports which code block of a document failed.
type BlockError struct {
	Line int // first code line of the block, 1-based
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("code block on line %d: %v", e.Line, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

func blockLine(n ast.Node, source []byte) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
}

// Convert renders Markdown src as an HTML fragment. The first failing code
// block aborts the conversion and nothing is written.
func Convert(src []byte, w io.Writer, r *render.Renderer, defaults codeblock.RenderOptions) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, New(r, defaults)),
	)
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Page wraps an HTML fragment in a standalone document with css inlined.
func Page(w io.Writer, title, css string, body []byte) error {
	head := hast.NewElement("head")
	charset := hast.NewElement("meta")
	charset.Set("charset", "utf-8")
	titleEl := hast.NewElement("title")
	titleEl.Append(hast.NewText(title))
	style := hast.NewElement("style")
	style.Append(hast.NewText(css))
	head.Append(charset, titleEl, style)

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>"); err != nil {
		return err
	}
	if err := hast.Render(w, head); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body></html>\n")
	return err
}
