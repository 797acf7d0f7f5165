package export

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/render"
	"github.com/fumiama/go-docx"
	"github.com/google/go-cmp/cmp"
)

func renderGo(t *testing.T, src string, opts codeblock.RenderOptions, rules ...codeblock.RedactionRule) *hast.Element {
	t.Helper()
	r := render.New(highlight.New(""), codeblock.Options{Redactions: rules})
	root, err := r.Block(src, "go", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return root
}

func TestLines_RunsAndNumbers(t *testing.T) {
	root := renderGo(t, "// note\nx := 1\n", codeblock.RenderOptions{ShowLineNumbers: true})
	lines := Lines(root)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Number != "1" || lines[1].Number != "2" {
		t.Errorf("unexpected numbers %q %q", lines[0].Number, lines[1].Number)
	}
	if len(lines[0].Runs) != 1 || !lines[0].Runs[0].Type.InCategory(chroma.Comment) {
		t.Errorf("expected a single comment run, got %+v", lines[0].Runs)
	}
	if got := lines[1].Text(); got != "x := 1" {
		t.Errorf("expected %q, got %q", "x := 1", got)
	}
}

func TestLines_ContextAndRedaction(t *testing.T) {
	rule := codeblock.RedactionRule{Name: "n", Patterns: []*regexp.Regexp{regexp.MustCompile(`42`)}}
	src := "a := 1\n// [!section-start s]\nb := 42\n// [!section-end s]\n"
	lines := Lines(renderGo(t, src, codeblock.RenderOptions{Section: "s"}, rule))
	if !lines[0].Context || lines[2].Context {
		t.Errorf("expected first line as context and third as content")
	}
	if lines[0].Number != "" {
		t.Error("expected no numbers when they are off")
	}
	var redacted bool
	for _, r := range lines[2].Runs {
		redacted = redacted || r.Redacted
	}
	if redacted {
		t.Error("expected an empty marker to leave no run")
	}
	if got := lines[2].Text(); got != "b := " {
		t.Errorf("expected %q, got %q", "b := ", got)
	}
}

func TestDOCX_RoundTrip(t *testing.T) {
	first := renderGo(t, "func f() {\n\treturn\n}\n", codeblock.RenderOptions{ShowLineNumbers: true})
	second := renderGo(t, "x := 2\n", codeblock.RenderOptions{})

	var buf bytes.Buffer
	if err := DOCX(&buf, highlight.New("monokai").Style(), DOCXOptions{TabWidth: 2}, first, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := docx.Parse(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	var got []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		got = append(got, paragraphText(para))
	}
	want := []string{"1  func f() {", "2    return", "3  }", "", "x := 2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected paragraphs (-want +got):\n%s", diff)
	}
}

func TestPlainText(t *testing.T) {
	root := renderGo(t, "package main\n\n// [!section-start s]\n\tgo f()\n// [!section-end s]\n", codeblock.RenderOptions{Section: "s", IsolateContext: true})
	if got := PlainText(root); !strings.Contains(got, "go f()\n") || strings.Contains(got, "package") {
		t.Errorf("unexpected text %q", got)
	}
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return buf.String()
}
