package codeblock

import "strings"

// Section directive names.
const (
	DirectiveSection      = "section"
	DirectiveSectionStart = "section-start"
	DirectiveSectionEnd   = "section-end"
)

// Section is the line span of a named section, 1-based and inclusive.
type Section struct {
	Name  string
	Start int
	End   int
}

// AssignSections runs the section state machine over the annotations of
// each line (indexed like lines) and records membership on the lines.
//
// A section is a member of every line from the one that opens it through
// the one that closes it. Names are unique across the document and every
// opened section must be closed. Ending a section that is not open is
// not checked.
func AssignSections(lines []*Line, annotations [][]Annotation) ([]Section, error) {
	var (
		sections []Section
		index    = make(map[string]int) // name -> position in sections
		open     []string
	)

	for i, line := range lines {
		lineNo := i + 1
		var closing []string
		var annots []Annotation
		if i < len(annotations) {
			annots = annotations[i]
		}

		for _, a := range annots {
			switch a.Name {
			case DirectiveSection, DirectiveSectionStart:
				name := sectionName(a.Args)
				if name == "" {
					return nil, &MissingSectionNameError{Line: lineNo, Annotation: a.Name}
				}
				if j, ok := index[name]; ok {
					return nil, &DuplicateSectionError{Name: name, Line: lineNo, FirstLine: sections[j].Start}
				}
				index[name] = len(sections)
				sections = append(sections, Section{Name: name, Start: lineNo})
				open = append(open, name)
				if a.Name == DirectiveSection {
					closing = append(closing, name)
				}
			case DirectiveSectionEnd:
				closing = append(closing, sectionName(a.Args))
			}
		}

		line.Sections = append([]string{}, open...)

		for _, name := range closing {
			for k, o := range open {
				if o == name {
					open = append(open[:k], open[k+1:]...)
					sections[index[name]].End = lineNo
					break
				}
			}
		}
	}

	if len(open) > 0 {
		err := &UnclosedSectionError{}
		for _, name := range open {
			err.Sections = append(err.Sections, OpenSection{Name: name, Line: sections[index[name]].Start})
		}
		return nil, err
	}
	return sections, nil
}

func sectionName(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
