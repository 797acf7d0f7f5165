package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/export"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/markdown"
	"github.com/dgallion1/codelines/internal/metrics"
	"github.com/dgallion1/codelines/internal/parser"
	"github.com/dgallion1/codelines/internal/render"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Worker processes a single render job.
type Worker struct {
	highlighter *highlight.Highlighter
	options     codeblock.Options
	log         *slog.Logger
}

func NewWorker(h *highlight.Highlighter, opts codeblock.Options, log *slog.Logger) *Worker {
	return &Worker{
		highlighter: h,
		options:     opts,
		log:         log,
	}
}

// Process runs the render pipeline for a job. The first failing block
// fails the whole job and no output is kept.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := parser.ForFile(job.Filename).Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", fmt.Errorf("parse: %w", err))
		return
	}
	job.mu.Lock()
	job.Title = doc.Title
	job.mu.Unlock()
	job.SetTotalBlocks(len(doc.Blocks))
	log.Info("parsed document", "blocks", len(doc.Blocks))

	// Phase 2: Highlight
	job.SetStatus(StatusHighlighting, "highlighting")
	tokens := make([][]hast.Node, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			job.Fail("highlighting", err)
			return
		}
		if b.Highlighted() {
			tokens[i] = b.Tokens
			continue
		}
		scope := w.scope(doc, b)
		nodes, err := w.highlighter.Highlight(b.Source, scope)
		if err != nil {
			log.Error("highlight failed", "block", i, "scope", scope, "error", err)
			metrics.BlockErrors.WithLabelValues("highlighting").Inc()
			job.Fail("highlighting", blockError(doc, b, err))
			return
		}
		tokens[i] = nodes
	}

	// Phase 3: Transform
	job.SetStatus(StatusTransforming, "transforming")
	blocks := make([]*codeblock.Block, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			job.Fail("transforming", err)
			return
		}
		blk, err := codeblock.Transform(tokens[i], w.options)
		if err != nil {
			log.Warn("transform failed", "block", i, "error", err)
			metrics.BlockErrors.WithLabelValues("transforming").Inc()
			job.Fail("transforming", blockError(doc, b, err))
			return
		}
		blocks[i] = blk
	}

	// Phase 4: Render
	job.SetStatus(StatusRendering, "rendering")
	roots := make([]*hast.Element, len(doc.Blocks))
	for i, b := range doc.Blocks {
		root, err := render.Assemble(blocks[i], render.ParseMetaWith(b.Meta, job.Options))
		if err != nil {
			log.Warn("render failed", "block", i, "error", err)
			metrics.BlockErrors.WithLabelValues("rendering").Inc()
			job.Fail("rendering", blockError(doc, b, err))
			return
		}
		roots[i] = root
		job.IncrBlocksRendered()
		metrics.BlocksRendered.Inc()
	}

	var out bytes.Buffer
	contentType := "text/html; charset=utf-8"
	switch job.Format {
	case FormatDOCX:
		contentType = docxContentType
		err = export.DOCX(&out, w.highlighter.Style(), export.DOCXOptions{}, roots...)
	default:
		err = w.page(&out, doc, roots)
	}
	if err != nil {
		log.Error("write output failed", "error", err)
		job.Fail("rendering", err)
		return
	}

	job.Complete(out.Bytes(), contentType)
	log.Info("render complete", "blocks", len(roots), "bytes", out.Len())
}

func (w *Worker) scope(doc *parser.Document, b parser.Block) string {
	if b.Lang != "" {
		return w.highlighter.FlagToScope(b.Lang)
	}
	if !parser.IsDocument(doc.Filename) {
		return w.highlighter.ScopeForFile(doc.Filename)
	}
	return ""
}

// page writes every block as a standalone HTML document, each under the
// heading it was found below.
func (w *Worker) page(out *bytes.Buffer, doc *parser.Document, roots []*hast.Element) error {
	var css bytes.Buffer
	if err := w.highlighter.WriteCSS(&css); err != nil {
		return err
	}

	var body []hast.Node
	heading := ""
	for i, root := range roots {
		if h := doc.Blocks[i].Heading; h != "" && h != heading {
			heading = h
			el := hast.NewElement("h2")
			el.Append(hast.NewText(h))
			body = append(body, el)
		}
		body = append(body, root)
	}
	html, err := hast.RenderString(body...)
	if err != nil {
		return err
	}
	return markdown.Page(out, doc.Title, css.String(), []byte(html))
}

func blockError(doc *parser.Document, b parser.Block, err error) error {
	if b.Line > 0 {
		return fmt.Errorf("%s:%d: %w", doc.Filename, b.Line, err)
	}
	return fmt.Errorf("%s: %w", doc.Filename, err)
}
