package render

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/parser"
	"github.com/google/go-cmp/cmp"
)

func newRenderer(opts codeblock.Options) *Renderer {
	return New(highlight.New(""), opts)
}

func TestParseMeta(t *testing.T) {
	tests := []struct {
		meta string
		want codeblock.RenderOptions
	}{
		{"", codeblock.RenderOptions{}},
		{"section=setup", codeblock.RenderOptions{Section: "setup"}},
		{`section="setup" isolate lines`, codeblock.RenderOptions{Section: "setup", IsolateContext: true, ShowLineNumbers: true}},
		{"isolate=false line-numbers {.wide}", codeblock.RenderOptions{ShowLineNumbers: true}},
		{"section", codeblock.RenderOptions{}},
		{`section='setup' isolate="false" lines`, codeblock.RenderOptions{Section: "setup", ShowLineNumbers: true}},
		{`section="setup isolate`, codeblock.RenderOptions{Section: "setup", IsolateContext: true}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseMeta(tt.meta)); diff != "" {
			t.Errorf("ParseMeta(%q) (-want +got):\n%s", tt.meta, diff)
		}
	}
}

func TestParseMetaWith_Overrides(t *testing.T) {
	defaults := codeblock.RenderOptions{ShowLineNumbers: true, IsolateContext: true}
	got := ParseMetaWith("nolines context", defaults)
	if got.ShowLineNumbers || got.IsolateContext {
		t.Errorf("expected defaults to be overridden, got %+v", got)
	}
}

func TestRenderer_HTMLSection(t *testing.T) {
	src := "package main\n\nfunc main() {\n\t// [!section-start body]\n\tprintln(\"hi\")\n\t// [!section-end body]\n}\n"
	out, err := newRenderer(codeblock.Options{}).HTML(src, "go", codeblock.RenderOptions{Section: "body", IsolateContext: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "[!section") {
		t.Errorf("expected directives to be stripped, got %s", out)
	}
	if strings.Contains(out, "package") {
		t.Errorf("expected context to be dropped, got %s", out)
	}
	if !strings.Contains(out, `class="code-block chroma"`) {
		t.Errorf("expected root classes, got %s", out)
	}
	if !strings.Contains(out, "println") {
		t.Errorf("expected section content, got %s", out)
	}
}

func TestRenderer_UnknownLanguageIsPlain(t *testing.T) {
	root, err := newRenderer(codeblock.Options{}).Block("a b", "klingon", codeblock.RenderOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pre := root.Children[1]
	if got := hast.TextContent(pre); got != "a b" {
		t.Errorf("expected %q, got %q", "a b", got)
	}
}

func TestRenderer_RedactsAcrossTokens(t *testing.T) {
	r := newRenderer(codeblock.Options{Redactions: []codeblock.RedactionRule{{
		Name:     "secret",
		Patterns: []*regexp.Regexp{regexp.MustCompile(`"[a-z]+-token"`)},
		Replace:  codeblock.ReplaceText(func(codeblock.Match) string { return `"…"` }),
	}}})
	out, err := r.HTML(`key := "abc-token"`, "go", codeblock.RenderOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "abc-token") {
		t.Errorf("expected secret to be hidden, got %s", out)
	}
	if !strings.Contains(out, `data-redaction="secret"`) {
		t.Errorf("expected redaction marker, got %s", out)
	}
}

func TestRenderer_CoreErrorsPassThrough(t *testing.T) {
	_, err := newRenderer(codeblock.Options{}).Block("// [!section-start a]\nx\n", "go", codeblock.RenderOptions{})
	var unclosed *codeblock.UnclosedSectionError
	if !errors.As(err, &unclosed) {
		t.Errorf("expected UnclosedSectionError, got %v", err)
	}
}

func TestRenderer_Document(t *testing.T) {
	doc := &parser.Document{
		Filename: "guide.md",
		Blocks: []parser.Block{
			{Lang: "go", Meta: "lines", Source: "x := 1\n"},
			{Tokens: []hast.Node{hast.Span("# [!section s]", "comment"), hast.NewText("\nls\n")}, Meta: "section=s isolate"},
		},
	}
	out, err := newRenderer(codeblock.Options{}).Document(doc, codeblock.RenderOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if !out[0].Root.HasClass(codeblock.ClassShowLineNumbers) {
		t.Error("expected fence meta to turn on line numbers")
	}
	if got := hast.TextContent(out[1].Root); got != "1" {
		t.Errorf("expected only the section line with its number, got %q", got)
	}
}

func TestRenderer_DocumentErrorNamesBlock(t *testing.T) {
	doc := &parser.Document{
		Filename: "guide.md",
		Blocks:   []parser.Block{{Lang: "go", Line: 12, Source: "// [!section]\n"}},
	}
	_, err := newRenderer(codeblock.Options{}).Document(doc, codeblock.RenderOptions{})
	if err == nil || !strings.HasPrefix(err.Error(), "guide.md:12: ") {
		t.Fatalf("expected error prefixed with block position, got %v", err)
	}
	var missing *codeblock.MissingSectionNameError
	if !errors.As(err, &missing) {
		t.Errorf("expected wrapped MissingSectionNameError, got %v", err)
	}
}

func TestRenderer_DocumentChromaHTMLSection(t *testing.T) {
	src := "func main() {\n\t// [!section-start body]\n\tx := 1\n\tprintln(x)\n\t// [!section-end body]\n}\n"
	it, err := lexers.Get("go").Tokenise(nil, src)
	if err != nil {
		t.Fatal(err)
	}
	var pre bytes.Buffer
	if err := html.New(html.WithClasses(true)).Format(&pre, styles.Get("github"), it); err != nil {
		t.Fatal(err)
	}

	doc, err := (&parser.HTMLParser{}).Parse(strings.NewReader("<html><body>"+pre.String()+"</body></html>"), "snippet.html")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Blocks) != 1 || !doc.Blocks[0].Highlighted() {
		t.Fatalf("expected one highlighted block, got %+v", doc.Blocks)
	}

	out, err := newRenderer(codeblock.Options{}).Document(doc, codeblock.RenderOptions{Section: "body", IsolateContext: true})
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	got, err := hast.RenderString(out[0].Root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "println") || strings.Contains(got, "func") {
		t.Errorf("expected only the section, got %s", got)
	}
	if strings.Contains(got, `class="tab"`) {
		t.Errorf("expected the shared tab indent stripped, got %s", got)
	}
	if strings.Contains(got, `class="cl"`) {
		t.Errorf("expected chroma line wrappers removed, got %s", got)
	}
}
