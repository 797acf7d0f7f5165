package codeblock

import (
	"fmt"
	"strings"
)

// MissingSectionNameError reports a section annotation without a name.
type MissingSectionNameError struct {
	Line       int
	Annotation string
}

func (e *MissingSectionNameError) Error() string {
	return fmt.Sprintf("Missing code section name on line %d in annotation [!%s]", e.Line, e.Annotation)
}

// DuplicateSectionError reports a section name opened a second time.
type DuplicateSectionError struct {
	Name      string
	Line      int
	FirstLine int
}

func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("Code section %s on line %d already seen on line %d", e.Name, e.Line, e.FirstLine)
}

// OpenSection is a section still open at the end of the input.
type OpenSection struct {
	Name string
	Line int
}

// UnclosedSectionError lists every section left open, in opening order.
type UnclosedSectionError struct {
	Sections []OpenSection
}

func (e *UnclosedSectionError) Error() string {
	parts := make([]string, len(e.Sections))
	for i, s := range e.Sections {
		parts[i] = fmt.Sprintf("%s on line %d", s.Name, s.Line)
	}
	return "Unclosed code sections: " + strings.Join(parts, ", ")
}

// SectionNotFoundError reports an isolation request for an unknown section.
type SectionNotFoundError struct {
	Name string
}

func (e *SectionNotFoundError) Error() string {
	return "Missing code section " + e.Name
}
