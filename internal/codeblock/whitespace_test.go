package codeblock

import (
	"testing"

	"github.com/dgallion1/codelines/internal/hast"
	"github.com/google/go-cmp/cmp"
)

func TestWrapWhitespace_OneMarkerPerCharacter(t *testing.T) {
	lines := []*Line{{Children: []hast.Node{hast.NewText("a \t b")}}}
	WrapWhitespace(lines)

	want := []hast.Node{
		hast.NewText("a"),
		hast.Span(" ", ClassSpace),
		hast.Span("\t", ClassTab),
		hast.Span(" ", ClassSpace),
		hast.NewText("b"),
	}
	if diff := cmp.Diff(want, lines[0].Children); diff != "" {
		t.Errorf("unexpected children (-want +got):\n%s", diff)
	}
}

func TestWrapWhitespace_InsideTokens(t *testing.T) {
	lines := []*Line{{Children: []hast.Node{hast.Span("x  y", "s")}}}
	WrapWhitespace(lines)

	tok := lines[0].Children[0].(*hast.Element)
	if len(tok.Children) != 4 {
		t.Fatalf("expected 4 children in token, got %d", len(tok.Children))
	}
	if got := len(markers(lines[0].Children, ClassSpace)); got != 2 {
		t.Errorf("expected 2 space markers, got %d", got)
	}
}

func TestWrapWhitespace_SkipsRedactionMarkers(t *testing.T) {
	marker := hast.Span("[hidden value]", ClassRedaction)
	lines := []*Line{{Children: []hast.Node{marker, hast.NewText(" x")}}}
	WrapWhitespace(lines)

	if len(marker.Children) != 1 || hast.TextContent(marker) != "[hidden value]" {
		t.Errorf("expected marker content untouched, got %d children", len(marker.Children))
	}
	if got := len(markers(lines[0].Children, ClassSpace)); got != 1 {
		t.Errorf("expected 1 space marker outside the redaction, got %d", got)
	}
}

func TestWrapWhitespace_Idempotent(t *testing.T) {
	lines := []*Line{{Children: []hast.Node{hast.NewText("\t  x = 1")}}}
	WrapWhitespace(lines)
	once := lines[0].Clone()
	WrapWhitespace(lines)
	if diff := cmp.Diff(once, lines[0]); diff != "" {
		t.Errorf("second pass changed the line (-once +twice):\n%s", diff)
	}
}

func TestWrapWhitespace_KeepsLineCount(t *testing.T) {
	lines := SegmentLines([]hast.Node{hast.NewText("a b\n c\n\td")})
	WrapWhitespace(lines)
	if len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(lines))
	}
	if diff := cmp.Diff([]string{"a b", " c", "\td"}, lineTexts(lines)); diff != "" {
		t.Errorf("text changed (-want +got):\n%s", diff)
	}
}
