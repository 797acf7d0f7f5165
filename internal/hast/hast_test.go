package hast

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClone_IsDeep(t *testing.T) {
	orig := &Element{
		Tag:      "span",
		Class:    []string{"kd", "keyword"},
		Attrs:    []Attr{{Key: "data-x", Val: "1"}},
		Children: []Node{NewText("func"), &Raw{Value: "note"}},
	}
	c := Clone(orig).(*Element)
	if diff := cmp.Diff(orig, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	c.Class[0] = "changed"
	c.Attrs[0].Val = "2"
	c.Children[0].(*Text).Value = "var"
	if orig.Class[0] != "kd" || orig.Attrs[0].Val != "1" || orig.Children[0].(*Text).Value != "func" {
		t.Errorf("mutating the clone changed the original: %+v", orig)
	}
}

func TestTextContent(t *testing.T) {
	n := &Element{Tag: "span", Children: []Node{
		NewText("a "),
		Span("b", "x"),
		&Raw{Value: "ignored"},
		NewText(" c"),
	}}
	if got := TextContent(n); got != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", got)
	}
}

func TestElement_SetGet(t *testing.T) {
	e := NewElement("div")
	e.Set("data-section", "a")
	e.Set("data-section", "a b")
	if len(e.Attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(e.Attrs))
	}
	if v, ok := e.Get("data-section"); !ok || v != "a b" {
		t.Errorf("expected %q, got %q (ok=%v)", "a b", v, ok)
	}
	if _, ok := e.Get("missing"); ok {
		t.Error("expected missing attribute to report ok=false")
	}
}

func TestRenderString(t *testing.T) {
	root := NewElement("span", "line")
	root.Set("data-section", "a b")
	root.Append(Span("<x>", "s"), NewText(" & y"))

	got, err := RenderString(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<span class="line" data-section="a b"><span class="s">&lt;x&gt;</span> &amp; y</span>`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParseHTML_RoundTrip(t *testing.T) {
	in := `<span class="kd keyword">func</span> <span class="nf">main</span>()` + "\n" + `<span class="c1 comment">// hi</span>`
	nodes, err := ParseHTML(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 5 {
		t.Fatalf("expected 5 top-level nodes, got %d", len(nodes))
	}
	kw, ok := nodes[0].(*Element)
	if !ok {
		t.Fatalf("expected element, got %T", nodes[0])
	}
	if !kw.HasClass("keyword") || !kw.HasClass("kd") {
		t.Errorf("expected classes kd and keyword, got %v", kw.Class)
	}
	if got := TextContentAll(nodes); got != "func main()\n// hi" {
		t.Errorf("unexpected text content %q", got)
	}

	out, err := RenderString(nodes...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Errorf("round trip changed markup:\nwant %s\ngot  %s", in, out)
	}
}
