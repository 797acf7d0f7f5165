package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/parser"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

// blockSummary is what inspect prints for one code block.
type blockSummary struct {
	Line       int
	Lang       string
	Meta       string
	Heading    string
	Sections   []codeblock.Section
	Directives []codeblock.Annotation
	Lines      []lineSummary
}

type lineSummary struct {
	Number   int
	Text     string
	Sections []string
	Redacted bool
}

func (a *app) inspectCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "dump the sections, directives and lines of each code block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filename, err := input(cmd, args)
			if err != nil {
				return prefix("inspect", err)
			}
			defer src.Close()

			doc, err := a.parse(src, filename, lang)
			if err != nil {
				return prefix("inspect", err)
			}
			summaries, err := a.inspect(doc)
			if err != nil {
				return prefix("inspect", err)
			}

			dump := litter.Options{
				StripPackageNames: true,
				HidePrivateFields: true,
				HideZeroValues:    true,
			}
			return prefix("inspect", a.write(cmd, func(w io.Writer) error {
				_, err := io.WriteString(w, dump.Sdump(summaries)+"\n")
				return err
			}))
		},
	}
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "``name of the output file")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "``language of the input, overrides the filename extension")
	return cmd
}

func (a *app) inspect(doc *parser.Document) ([]blockSummary, error) {
	out := make([]blockSummary, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		var (
			block *codeblock.Block
			err   error
		)
		if b.Highlighted() {
			block, err = codeblock.Transform(b.Tokens, a.renderer.Options)
		} else {
			lang := b.Lang
			if lang == "" && !parser.IsDocument(doc.Filename) {
				lang = strings.TrimPrefix(filepath.Ext(doc.Filename), ".")
			}
			block, err = a.renderer.Transform(b.Source, lang)
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", doc.Filename, b.Line, err)
		}

		s := blockSummary{
			Line:       b.Line,
			Lang:       b.Lang,
			Meta:       b.Meta,
			Heading:    b.Heading,
			Sections:   block.Sections,
			Directives: block.Directives(),
		}
		for i, l := range block.Lines {
			s.Lines = append(s.Lines, lineSummary{
				Number:   i + 1,
				Text:     l.Text(),
				Sections: l.Sections,
				Redacted: l.Redacted,
			})
		}
		out = append(out, s)
	}
	return out, nil
}
