package highlight

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/dgallion1/codelines/internal/hast"
)

func TestHighlight_PreservesText(t *testing.T) {
	h := New("")
	src := "package main\n\n// entry\nfunc main() {}\n"
	nodes, err := h.Highlight(src, "Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hast.TextContentAll(nodes); got != src {
		t.Errorf("expected %q, got %q", src, got)
	}
}

func TestHighlight_CommentCategory(t *testing.T) {
	h := New("")
	nodes, err := h.Highlight("x := 1 // [!section a]\n", "Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found bool
	for _, n := range nodes {
		el, ok := n.(*hast.Element)
		if !ok || !el.HasClass("comment") {
			continue
		}
		found = true
		if !strings.Contains(hast.TextContent(el), "[!section a]") {
			t.Errorf("expected directive inside comment token, got %q", hast.TextContent(el))
		}
	}
	if !found {
		t.Error("expected a token with the comment class")
	}
}

func TestHighlight_EmptyScopeIsPlainText(t *testing.T) {
	nodes, err := New("").Highlight("a < b", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if _, ok := nodes[0].(*hast.Text); !ok {
		t.Errorf("expected text node, got %T", nodes[0])
	}
}

func TestHighlight_UnknownScope(t *testing.T) {
	if _, err := New("").Highlight("x", "no-such-language"); err == nil {
		t.Error("expected error for unknown scope")
	}
}

func TestFlagToScope(t *testing.T) {
	h := New("")
	tests := []struct {
		flag string
		want string
	}{
		{"go", "Go"},
		{"py", "Python"},
		{"rs", "Rust"},
		{"", ""},
		{"not-a-language-xyz", ""},
	}
	for _, tt := range tests {
		if got := h.FlagToScope(tt.flag); got != tt.want {
			t.Errorf("FlagToScope(%q): expected %q, got %q", tt.flag, tt.want, got)
		}
	}
}

func TestScopeForFile(t *testing.T) {
	h := New("")
	if got := h.ScopeForFile("cmd/main.go"); got != "Go" {
		t.Errorf("expected %q, got %q", "Go", got)
	}
	if got := h.ScopeForFile("README.unknownext"); got != "" {
		t.Errorf("expected no scope, got %q", got)
	}
}

func TestTokenType_RoundTrip(t *testing.T) {
	classes := tokenClasses(chroma.CommentSingle)
	if len(classes) != 2 || classes[1] != "comment" {
		t.Fatalf("unexpected classes %v", classes)
	}
	got, ok := TokenType(classes)
	if !ok || got != chroma.CommentSingle {
		t.Errorf("expected %v, got %v", chroma.CommentSingle, got)
	}
	if classes := tokenClasses(chroma.Whitespace); classes != nil {
		t.Errorf("expected whitespace to be unclassed, got %v", classes)
	}
}

func TestWriteCSS(t *testing.T) {
	var b strings.Builder
	if err := New("monokai").WriteCSS(&b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.String(), "."+RootClass+" ") {
		t.Errorf("expected rules scoped to .%s, got %q", RootClass, b.String())
	}
}
