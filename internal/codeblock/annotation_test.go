package codeblock

import (
	"testing"

	"github.com/dgallion1/codelines/internal/hast"
	"github.com/google/go-cmp/cmp"
)

func TestParseAnnotations_StripRemovesDirectiveComment(t *testing.T) {
	lines := SegmentLines(tokens("x := 1 // [!section-start b]"))
	annots := ParseAnnotations(lines, ModeStrip, "")

	want := [][]Annotation{{{Name: "section-start", Args: "b", Line: 1}}}
	if diff := cmp.Diff(want, annots); diff != "" {
		t.Fatalf("unexpected annotations (-want +got):\n%s", diff)
	}
	if got := lines[0].Text(); got != "x := 1 " {
		t.Errorf("expected comment token to be removed, got %q", got)
	}
	if n := len(markers(lines[0].Children, DefaultCommentClass)); n != 0 {
		t.Errorf("expected no comment tokens left, got %d", n)
	}
}

func TestParseAnnotations_StripKeepsOtherCommentText(t *testing.T) {
	lines := SegmentLines(tokens("// keep me [!mark x]"))
	annots := ParseAnnotations(lines, ModeStrip, "")

	if len(annots[0]) != 1 || annots[0][0].Name != "mark" || annots[0][0].Args != "x" {
		t.Fatalf("unexpected annotations %+v", annots[0])
	}
	if got := lines[0].Text(); got != "// keep me " {
		t.Errorf("expected %q, got %q", "// keep me ", got)
	}
}

func TestParseAnnotations_Retain(t *testing.T) {
	src := "foo() // [!section a]"
	lines := SegmentLines(tokens(src))
	annots := ParseAnnotations(lines, ModeRetain, "")

	if len(annots[0]) != 1 || annots[0][0].Name != "section" {
		t.Fatalf("expected section annotation, got %+v", annots[0])
	}
	if got := lines[0].Text(); got != src {
		t.Errorf("expected text to be retained verbatim, got %q", got)
	}
}

func TestParseAnnotations_Ignore(t *testing.T) {
	src := "foo() // [!section a]"
	lines := SegmentLines(tokens(src))
	annots := ParseAnnotations(lines, ModeIgnore, "")

	if len(annots) != 1 || len(annots[0]) != 0 {
		t.Errorf("expected no annotations, got %+v", annots)
	}
	if got := lines[0].Text(); got != src {
		t.Errorf("expected raw text, got %q", got)
	}
}

func TestParseAnnotations_DirectiveSplitAcrossTextRuns(t *testing.T) {
	comment := hast.NewElement("span", "c1", DefaultCommentClass)
	comment.Children = []hast.Node{hast.NewText("// [!sec"), hast.NewText("tion a]")}
	lines := []*Line{{Children: []hast.Node{comment}}}
	annots := ParseAnnotations(lines, ModeStrip, "")

	if len(annots[0]) != 0 {
		t.Errorf("expected no annotations, got %+v", annots[0])
	}
	if got := lines[0].Text(); got != "// [!section a]" {
		t.Errorf("expected comment text untouched, got %q", got)
	}
}

func TestParseAnnotations_SeveralInOneComment(t *testing.T) {
	lines := SegmentLines(tokens("// [!section-end a] [!highlight  two words ]"))
	annots := ParseAnnotations(lines, ModeStrip, "")

	want := []Annotation{
		{Name: "section-end", Args: "a", Line: 1},
		{Name: "highlight", Args: "two words", Line: 1},
	}
	if diff := cmp.Diff(want, annots[0]); diff != "" {
		t.Errorf("unexpected annotations (-want +got):\n%s", diff)
	}
	if len(lines[0].Children) != 0 {
		t.Errorf("expected the comment to be removed, got %q", lines[0].Text())
	}
}

func TestParseAnnotations_OnlyCommentTokens(t *testing.T) {
	lines := []*Line{{Children: []hast.Node{hast.Span(`"[!section a]"`, "s", "string")}}}
	annots := ParseAnnotations(lines, ModeStrip, "")
	if len(annots[0]) != 0 {
		t.Errorf("expected string token to be ignored, got %+v", annots[0])
	}
}

func TestParseAnnotations_CustomCommentClass(t *testing.T) {
	lines := []*Line{{Children: []hast.Node{hast.Span("# [!section a]", "c1")}}}
	annots := ParseAnnotations(lines, ModeStrip, "c1")
	if len(annots[0]) != 1 {
		t.Errorf("expected 1 annotation, got %+v", annots[0])
	}
}

func TestParseAnnotations_JSXBraces(t *testing.T) {
	lines := []*Line{{Children: []hast.Node{
		hast.Span("<div>", "nt"),
		hast.Span("{", "p"),
		hast.Span("/* [!section-start a] */", "cm", "comment"),
		hast.Span("}", "p"),
	}}}
	annots := ParseAnnotations(lines, ModeStrip, "")

	if len(annots[0]) != 1 {
		t.Fatalf("expected 1 annotation, got %+v", annots[0])
	}
	want := []hast.Node{hast.Span("<div>", "nt")}
	if diff := cmp.Diff(want, lines[0].Children); diff != "" {
		t.Errorf("unexpected children (-want +got):\n%s", diff)
	}
}

func TestParseAnnotations_JSXBracesMustMatchExactly(t *testing.T) {
	tests := []struct {
		name  string
		left  hast.Node
		right hast.Node
	}{
		{"text instead of element", hast.NewText("{"), hast.Span("}", "p")},
		{"two children", &hast.Element{Tag: "span", Children: []hast.Node{hast.NewText("{"), hast.NewText(" ")}}, hast.Span("}", "p")},
		{"wrong literal", hast.Span("(", "p"), hast.Span("}", "p")},
		{"brace with space", hast.Span("{", "p"), hast.Span(" }", "p")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []*Line{{Children: []hast.Node{
				tt.left,
				hast.Span("/* [!section a] */", "comment"),
				tt.right,
			}}}
			ParseAnnotations(lines, ModeStrip, "")
			if len(lines[0].Children) != 2 {
				t.Fatalf("expected only the comment to go, got %d children", len(lines[0].Children))
			}
			if diff := cmp.Diff([]hast.Node{tt.left, tt.right}, lines[0].Children); diff != "" {
				t.Errorf("siblings changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAnnotationMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AnnotationMode
		wantErr bool
	}{
		{"", ModeStrip, false},
		{"strip", ModeStrip, false},
		{"Retain", ModeRetain, false},
		{" ignore ", ModeIgnore, false},
		{"drop", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAnnotationMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("in=%q: unexpected error state: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("in=%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
