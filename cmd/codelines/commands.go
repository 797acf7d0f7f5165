package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/export"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/markdown"
	"github.com/dgallion1/codelines/internal/parser"
	"github.com/spf13/cobra"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		lang   string
		format string
		page   bool
		opts   codeblock.RenderOptions
	)
	cmd := &cobra.Command{
		Use:   "render [input] [-o output]",
		Short: "render the code blocks of a source file or document",
		Long: `render reads a source file, or the code blocks of a Markdown or HTML
document, and renders each block. Options given in a fence info string
("go section=setup isolate lines") override the flags for that block.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filename, err := input(cmd, args)
			if err != nil {
				return prefix("render", err)
			}
			defer src.Close()

			doc, err := a.parse(src, filename, lang)
			if err != nil {
				return prefix("render", err)
			}
			blocks, err := a.renderer.Document(doc, opts)
			if err != nil {
				return prefix("render", err)
			}
			a.log.Debug("rendered", "file", doc.Filename, "blocks", len(blocks), "format", format)

			roots := make([]*hast.Element, len(blocks))
			for i, b := range blocks {
				roots[i] = b.Root
			}
			return prefix("render", a.write(cmd, func(w io.Writer) error {
				switch format {
				case "html":
					return a.writeHTML(w, doc.Title, roots, page)
				case "docx":
					return export.DOCX(w, a.renderer.Highlighter.Style(), export.DOCXOptions{}, roots...)
				case "text":
					return writeText(w, roots)
				}
				return fmt.Errorf("unsupported format: %s", format)
			}))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&a.output, "output", "o", "", "``name of the output file")
	f.StringVarP(&lang, "lang", "l", "", "``language of the input, overrides the filename extension")
	f.StringVarP(&format, "format", "f", "html", "``output format: html, docx or text")
	f.BoolVar(&page, "page", false, "wrap HTML output in a standalone page")
	f.StringVarP(&opts.Section, "section", "s", "", "``render only the named section")
	f.BoolVar(&opts.IsolateContext, "isolate", false, "drop the lines outside the section")
	f.BoolVarP(&opts.ShowLineNumbers, "line-numbers", "n", false, "show line numbers")
	return cmd
}

// parse reads a document, or a single source block when the input has no
// document extension. lang overrides the language of source input.
func (a *app) parse(r io.Reader, filename, lang string) (*parser.Document, error) {
	name := filename
	if name == "" {
		name = "stdin"
	}
	doc, err := parser.ForFile(filename).Parse(r, name)
	if err != nil {
		return nil, err
	}
	if lang != "" && !parser.IsDocument(filename) {
		for i := range doc.Blocks {
			doc.Blocks[i].Lang = lang
		}
	}
	return doc, nil
}

func (a *app) writeHTML(w io.Writer, title string, roots []*hast.Element, page bool) error {
	var body bytes.Buffer
	for _, root := range roots {
		if err := hast.Render(&body, root); err != nil {
			return err
		}
		body.WriteByte('\n')
	}
	if !page {
		_, err := body.WriteTo(w)
		return err
	}
	var css bytes.Buffer
	if err := a.renderer.Highlighter.WriteCSS(&css); err != nil {
		return err
	}
	return markdown.Page(w, title, css.String(), body.Bytes())
}

func writeText(w io.Writer, roots []*hast.Element) error {
	texts := make([]string, len(roots))
	for i, root := range roots {
		texts[i] = export.PlainText(root)
	}
	_, err := io.WriteString(w, strings.Join(texts, "\n"))
	return err
}

func (a *app) markdownCmd() *cobra.Command {
	var (
		page  bool
		title string
		opts  codeblock.RenderOptions
	)
	cmd := &cobra.Command{
		Use:   "markdown [input] [-o output]",
		Short: "convert Markdown to HTML, rendering its code blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filename, err := input(cmd, args)
			if err != nil {
				return prefix("markdown", err)
			}
			defer src.Close()
			data, err := io.ReadAll(src)
			if err != nil {
				return prefix("markdown", err)
			}

			var body bytes.Buffer
			if err := markdown.Convert(data, &body, a.renderer, opts); err != nil {
				if filename != "" {
					err = fmt.Errorf("%s: %w", filename, err)
				}
				return prefix("markdown", err)
			}
			return prefix("markdown", a.write(cmd, func(w io.Writer) error {
				if !page {
					_, err := body.WriteTo(w)
					return err
				}
				var css bytes.Buffer
				if err := a.renderer.Highlighter.WriteCSS(&css); err != nil {
					return err
				}
				return markdown.Page(w, title, css.String(), body.Bytes())
			}))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&a.output, "output", "o", "", "``name of the output file")
	f.BoolVar(&page, "page", false, "wrap the output in a standalone page")
	f.StringVar(&title, "title", "codelines", "``page title")
	f.BoolVar(&opts.IsolateContext, "isolate", false, "drop the lines outside the section of each block")
	f.BoolVarP(&opts.ShowLineNumbers, "line-numbers", "n", false, "show line numbers")
	return cmd
}

func (a *app) cssCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "css [-o output]",
		Short: "print the stylesheet for --style",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return prefix("css", a.write(cmd, func(w io.Writer) error {
				if list {
					_, err := io.WriteString(w, strings.Join(highlight.Styles(), "\n")+"\n")
					return err
				}
				return a.renderer.Highlighter.WriteCSS(w)
			}))
		},
	}
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "``name of the output file")
	cmd.Flags().BoolVar(&list, "list", false, "list the available styles instead")
	return cmd
}
