package codeblock

import "github.com/dgallion1/codelines/internal/hast"

// Options configures Transform.
type Options struct {
	Annotations  AnnotationMode // default strip
	Redactions   []RedactionRule
	CommentClass string // default "comment"
}

// Block is a transformed code block.
type Block struct {
	Lines       []*Line
	Annotations [][]Annotation // per line
	Sections    []Section
}

// Transform runs the line pipeline over a highlighted node list. The input
// is copied first and never modified.
func Transform(nodes []hast.Node, opts Options) (*Block, error) {
	mode := opts.Annotations
	if mode == "" {
		mode = ModeStrip
	}

	lines := SegmentLines(hast.CloneAll(nodes))
	lines = TrimBlankLines(lines)

	if err := Redact(lines, opts.Redactions); err != nil {
		return nil, err
	}

	annotations := ParseAnnotations(lines, mode, opts.CommentClass)
	sections, err := AssignSections(lines, annotations)
	if err != nil {
		return nil, err
	}

	WrapWhitespace(lines)

	return &Block{
		Lines:       lines,
		Annotations: annotations,
		Sections:    sections,
	}, nil
}

// Directives returns every annotation of the block in line order, skipping
// the section directives consumed by the state machine.
func (b *Block) Directives() []Annotation {
	var out []Annotation
	for _, annots := range b.Annotations {
		for _, a := range annots {
			switch a.Name {
			case DirectiveSection, DirectiveSectionStart, DirectiveSectionEnd:
				continue
			}
			out = append(out, a)
		}
	}
	return out
}
