// Package highlight adapts chroma to the token trees consumed by codeblock.
package highlight

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dgallion1/codelines/internal/hast"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "github"

// RootClass scopes the stylesheet written by WriteCSS.
const RootClass = "chroma"

// Highlighter tokenises source text. It is safe for concurrent use and is
// meant to be created once by the caller and passed to whoever needs it.
type Highlighter struct {
	style *chroma.Style

	mu     sync.RWMutex
	lexers map[string]chroma.Lexer
}

// New returns a Highlighter using the named chroma style. Unknown names
// fall back to chroma's default style.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		style:  style,
		lexers: make(map[string]chroma.Lexer),
	}
}

// Style returns the chroma style of h.
func (h *Highlighter) Style() *chroma.Style {
	return h.style
}

// FlagToScope maps a language flag such as "go", "ts" or "shell" to a
// lexer name. It returns "" when no lexer matches.
func (h *Highlighter) FlagToScope(flag string) string {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return ""
	}
	l := lexers.Get(flag)
	if l == nil {
		l = lexers.Match("file." + flag)
	}
	if l == nil {
		return ""
	}
	return l.Config().Name
}

// ScopeForFile returns the lexer name for a filename, or "".
func (h *Highlighter) ScopeForFile(filename string) string {
	if l := lexers.Match(filename); l != nil {
		return l.Config().Name
	}
	return ""
}

// Highlight tokenises source with the lexer named scope. An empty scope
// returns the source as a single text run.
func (h *Highlighter) Highlight(source, scope string) ([]hast.Node, error) {
	if scope == "" {
		return []hast.Node{hast.NewText(source)}, nil
	}
	lexer := h.lexer(scope)
	if lexer == nil {
		return nil, fmt.Errorf("no lexer for scope %q", scope)
	}

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", scope, err)
	}

	var nodes []hast.Node
	for _, tok := range it.Tokens() {
		if tok.Value == "" {
			continue
		}
		classes := tokenClasses(tok.Type)
		if len(classes) == 0 {
			nodes = append(nodes, hast.NewText(tok.Value))
			continue
		}
		nodes = append(nodes, hast.Span(tok.Value, classes...))
	}
	return nodes, nil
}

func (h *Highlighter) lexer(scope string) chroma.Lexer {
	h.mu.RLock()
	l := h.lexers[scope]
	h.mu.RUnlock()
	if l != nil {
		return l
	}

	l = lexers.Get(scope)
	if l == nil {
		return nil
	}
	l = chroma.Coalesce(l)

	h.mu.Lock()
	h.lexers[scope] = l
	h.mu.Unlock()
	return l
}

// WriteCSS writes a stylesheet for the token classes produced by Highlight.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(w, h.style); err != nil {
		return fmt.Errorf("write css: %w", err)
	}
	return nil
}

// Languages lists the names of all known lexers, sorted.
func Languages() []string {
	names := lexers.Names(false)
	sort.Strings(names)
	return names
}

// Styles lists the names of all known styles.
func Styles() []string {
	return styles.Names()
}

// tokenClasses returns the short chroma class of t followed by a readable
// category class. Plain text and whitespace get none.
func tokenClasses(t chroma.TokenType) []string {
	if t.InCategory(chroma.Text) || t == chroma.Background {
		return nil
	}
	var classes []string
	if c := chroma.StandardTypes[t]; c != "" {
		classes = append(classes, c)
	}
	if c := categoryClass(t); c != "" {
		classes = append(classes, c)
	}
	return classes
}

func categoryClass(t chroma.TokenType) string {
	switch {
	case t.InCategory(chroma.Comment):
		return "comment"
	case t.InCategory(chroma.Keyword):
		return "keyword"
	case t.InSubCategory(chroma.LiteralString):
		return "string"
	case t.InSubCategory(chroma.LiteralNumber):
		return "number"
	case t.InCategory(chroma.Literal):
		return "literal"
	case t.InCategory(chroma.Name):
		return "name"
	case t.InCategory(chroma.Operator):
		return "operator"
	case t.InCategory(chroma.Punctuation):
		return "punctuation"
	case t.InCategory(chroma.Generic):
		return "generic"
	case t == chroma.Error:
		return "error"
	}
	return ""
}

// TokenType recovers the chroma token type from a token's classes.
func TokenType(classes []string) (chroma.TokenType, bool) {
	for _, c := range classes {
		if t, ok := classTypes[c]; ok {
			return t, true
		}
	}
	return chroma.None, false
}

var classTypes = func() map[string]chroma.TokenType {
	m := make(map[string]chroma.TokenType, len(chroma.StandardTypes))
	for t, c := range chroma.StandardTypes {
		if c != "" {
			m[c] = t
		}
	}
	return m
}()
