package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/dgallion1/codelines/internal/hast"
	"golang.org/x/net/html"
)

// CommentClass is added to comment tokens of pre-highlighted HTML so the
// annotation parser finds them whichever highlighter produced the markup.
const CommentClass = "comment"

// HTMLParser extracts <pre> blocks from HTML files. Blocks holding markup
// are kept as token trees, plain ones as source text.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{
		Title:    titleFor(filename),
		Filename: filename,
	}

	// Extract title from <title> tag if present.
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	var heading string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if headingLevel(n.Data) > 0 {
				heading = textContent(n)
				return
			}
			switch n.Data {
			case "script", "style", "template":
				return
			case "pre":
				doc.Blocks = append(doc.Blocks, preBlock(n, heading))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	return doc, nil
}

func preBlock(pre *html.Node, heading string) Block {
	b := Block{Heading: heading, Lang: languageOf(pre)}

	content := pre
	if code := onlyChild(pre, "code"); code != nil {
		content = code
		if lang := languageOf(code); lang != "" {
			b.Lang = lang
		}
	}

	if !hasElementChild(content) {
		b.Source = rawText(content)
		return b
	}

	b.Tokens = []hast.Node{}
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		b.Tokens = append(b.Tokens, hast.FromHTML(c))
	}
	b.Tokens = flattenLines(b.Tokens)
	markComments(b.Tokens)
	return b
}

// flattenLines removes chroma's per-line wrappers (line, cl) and line
// number spans, and turns whitespace-only tokens into text so indentation
// sits directly on the line.
func flattenLines(nodes []hast.Node) []hast.Node {
	out := make([]hast.Node, 0, len(nodes))
	for _, n := range nodes {
		e, ok := n.(*hast.Element)
		switch {
		case !ok:
			out = append(out, n)
		case e.HasClass("ln"), e.HasClass("lnt"):
		case e.HasClass("line"), e.HasClass("cl"):
			out = append(out, flattenLines(e.Children)...)
		case isWhitespaceToken(e):
			out = append(out, hast.NewText(hast.TextContent(e)))
		default:
			out = append(out, e)
		}
	}
	return out
}

func isWhitespaceToken(e *hast.Element) bool {
	if len(e.Children) == 0 {
		return false
	}
	for _, c := range e.Children {
		t, ok := c.(*hast.Text)
		if !ok || strings.Trim(t.Value, " \t\n") != "" {
			return false
		}
	}
	return true
}

// languageOf reads the language-x / lang-x class convention.
func languageOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if lang, ok := strings.CutPrefix(c, "language-"); ok {
				return lang
			}
			if lang, ok := strings.CutPrefix(c, "lang-"); ok {
				return lang
			}
		}
	}
	for _, a := range n.Attr {
		if a.Key == "data-lang" {
			return a.Val
		}
	}
	return ""
}

// markComments tags tokens carrying a known comment class from chroma,
// highlight.js or Prism markup.
func markComments(nodes []hast.Node) {
	for _, n := range nodes {
		e, ok := n.(*hast.Element)
		if !ok {
			continue
		}
		if isCommentToken(e) {
			e.AddClass(CommentClass)
			continue
		}
		markComments(e.Children)
	}
}

func isCommentToken(e *hast.Element) bool {
	for _, c := range e.Class {
		if c == CommentClass || c == "hljs-comment" {
			return true
		}
		for t, short := range chroma.StandardTypes {
			if short == c && t.InCategory(chroma.Comment) {
				return true
			}
		}
	}
	return false
}

func onlyChild(n *html.Node, tag string) *html.Node {
	var found *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if c.Data != tag || found != nil {
				return nil
			}
			found = c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		}
	}
	return found
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// rawText is the untrimmed text below n.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(rawText(n))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
