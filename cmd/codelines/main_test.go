package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goSource = "package main\n\n// [!section-start body]\nfunc main() {}\n// [!section-end body]\n"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender_Stdin(t *testing.T) {
	out, err := run(t, "x := 1\n", "render", "--lang", "go", "-n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`class="chroma`, "show-line-numbers", "x"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}
}

func TestRender_TextSection(t *testing.T) {
	out, err := run(t, goSource, "render", "--lang", "go", "--format", "text", "--section", "body", "--isolate")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "func main() {}") {
		t.Errorf("expected section body, got %q", out)
	}
	if strings.Contains(out, "package") || strings.Contains(out, "[!") {
		t.Errorf("expected context and directives removed, got %q", out)
	}
}

func TestRender_File(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.md")
	out := filepath.Join(dir, "notes.html")
	src := "# Notes\n\n```go lines\nx := 1\n```\n\n```go\ny := 2\n```\n"
	if err := os.WriteFile(in, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "", "render", in, "-o", out, "--page"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if !strings.Contains(html, "<title>Notes</title>") {
		t.Errorf("expected document title in page, got %s", html)
	}
	if n := strings.Count(html, `<pre`); n != 2 {
		t.Errorf("expected 2 blocks, got %d", n)
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"unclosed", "// [!section-start a]\nx := 1\n", []string{"render", "--lang", "go"}, "Unclosed code sections: a on line 1"},
		{"bad format", "x := 1\n", []string{"render", "--lang", "go", "--format", "pdf"}, "unsupported format"},
		{"bad mode", "x := 1\n", []string{"render", "--annotations", "keep"}, "unknown annotation mode"},
		{"missing rules", "x := 1\n", []string{"render", "--rules", "/nonexistent/rules.yaml"}, "rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.stdin, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	src := "# Doc\n\n```go isolate section=a\n// [!section-start a]\nx := 1\n// [!section-end a]\ny := 2\n```\n"
	out, err := run(t, src, "markdown")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if !strings.Contains(out, "<h1>Doc</h1>") {
		t.Errorf("expected heading, got %s", out)
	}
	if !strings.Contains(out, ">1<") || strings.Contains(out, ">2<") {
		t.Errorf("expected only section a, got %s", out)
	}
}

func TestCSS(t *testing.T) {
	out, err := run(t, "", "css", "--style", "monokai")
	if err != nil {
		t.Fatalf("css: %v", err)
	}
	if !strings.Contains(out, ".chroma") {
		t.Errorf("expected chroma rules, got %s", out)
	}

	out, err = run(t, "", "css", "--list")
	if err != nil {
		t.Fatalf("css --list: %v", err)
	}
	if !strings.Contains(out, "monokai\n") {
		t.Errorf("expected monokai in style list")
	}
}

func TestInspect(t *testing.T) {
	out, err := run(t, goSource, "inspect", "--lang", "go")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{`Name: "body"`, "Start: 3", "End: 5", `Text: "func main() {}"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
