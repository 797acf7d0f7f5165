// Package codeblock turns a highlighted token stream into a line-oriented
// tree annotated with sections, redactions and directive metadata.
//
// The stages run in a fixed order, each over a private copy of the input:
//
//	SegmentLines -> TrimBlankLines -> Redact -> ParseAnnotations ->
//	AssignSections -> WrapWhitespace
//
// Transform runs them all. SplitSection isolates one section of the result
// and Render assembles the final element tree. Nothing here logs or
// recovers: every error aborts the block.
package codeblock

// Class names and attributes exposed to stylesheets and scripts.
const (
	ClassCodeBlock       = "code-block"
	ClassShowLineNumbers = "show-line-numbers"
	ClassLineNumbers     = "line-numbers"
	ClassLineNumber      = "line-number"
	ClassCode            = "code"
	ClassLine            = "line"
	ClassSpace           = "space"
	ClassTab             = "tab"
	ClassRedaction       = "redaction"
	ClassSectionContent  = "section-content"
	ClassSectionContext  = "section-context"
	ClassContentIndent   = "content-indent"

	AttrSection       = "data-section"
	AttrRedaction     = "data-redaction"
	AttrRedacted      = "data-redacted"
	AttrContentIndent = "data-content-indent"

	PropIndentSpaces = "--content-indent-spaces"
	PropIndentTabs   = "--content-indent-tabs"
)

// DefaultCommentClass marks tokens scanned for annotations.
const DefaultCommentClass = "comment"
