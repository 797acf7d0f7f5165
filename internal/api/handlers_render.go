package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/config"
	"github.com/dgallion1/codelines/internal/export"
	"github.com/dgallion1/codelines/internal/hast"
	"github.com/dgallion1/codelines/internal/markdown"
	"github.com/dgallion1/codelines/internal/pipeline"
	"github.com/dgallion1/codelines/internal/render"
	"github.com/go-chi/chi/v5"
)

type renderRequest struct {
	Source      string `json:"source"`
	Lang        string `json:"lang"`
	Filename    string `json:"filename"`
	Section     string `json:"section"`
	Isolate     bool   `json:"isolate"`
	LineNumbers *bool  `json:"line_numbers"`
}

func (req renderRequest) options(cfg config.Config) codeblock.RenderOptions {
	opts := codeblock.RenderOptions{
		Section:         req.Section,
		IsolateContext:  req.Isolate,
		ShowLineNumbers: cfg.ShowLineNumbers,
	}
	if req.LineNumbers != nil {
		opts.ShowLineNumbers = *req.LineNumbers
	}
	return opts
}

// language falls back to the filename extension when no lang is given.
func (req renderRequest) language() string {
	if req.Lang != "" {
		return req.Lang
	}
	return strings.TrimPrefix(filepath.Ext(req.Filename), ".")
}

type sectionJSON struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type directiveJSON struct {
	Name string `json:"name"`
	Args string `json:"args,omitempty"`
	Line int    `json:"line"`
}

func (s *Server) decodeRender(w http.ResponseWriter, r *http.Request) (renderRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return req, false
		}
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	if req.Source == "" {
		jsonError(w, "source is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRender(w, r)
	if !ok {
		return
	}

	block, err := s.renderer.Transform(req.Source, req.language())
	if err != nil {
		s.renderError(w, err)
		return
	}
	root, err := render.Assemble(block, req.options(s.cfg))
	if err != nil {
		s.renderError(w, err)
		return
	}
	html, err := hast.RenderString(root)
	if err != nil {
		s.renderError(w, err)
		return
	}

	sections := make([]sectionJSON, 0, len(block.Sections))
	for _, sec := range block.Sections {
		sections = append(sections, sectionJSON{Name: sec.Name, Start: sec.Start, End: sec.End})
	}
	directives := make([]directiveJSON, 0)
	for _, d := range block.Directives() {
		directives = append(directives, directiveJSON{Name: d.Name, Args: d.Args, Line: d.Line})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"html":       html,
		"lang":       s.renderer.Highlighter.FlagToScope(req.language()),
		"lines":      len(block.Lines),
		"sections":   sections,
		"directives": directives,
	})
}

func (s *Server) handleRenderDOCX(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRender(w, r)
	if !ok {
		return
	}

	block, err := s.renderer.Transform(req.Source, req.language())
	if err != nil {
		s.renderError(w, err)
		return
	}
	root, err := render.Assemble(block, req.options(s.cfg))
	if err != nil {
		s.renderError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.DOCX(&buf, s.renderer.Highlighter.Style(), export.DOCXOptions{}, root); err != nil {
		s.renderError(w, err)
		return
	}

	name := "code.docx"
	if req.Filename != "" {
		base := sanitizeFilename(req.Filename)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + ".docx"
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

func (s *Server) handleRenderMarkdown(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	src, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	q := r.URL.Query()
	defaults := codeblock.RenderOptions{
		ShowLineNumbers: queryBool(q.Get("line_numbers"), s.cfg.ShowLineNumbers),
		IsolateContext:  queryBool(q.Get("isolate"), false),
	}

	var body bytes.Buffer
	if err := markdown.Convert(src, &body, s.renderer, defaults); err != nil {
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !queryBool(q.Get("page"), false) {
		body.WriteTo(w)
		return
	}
	var css bytes.Buffer
	if err := s.renderer.Highlighter.WriteCSS(&css); err != nil {
		s.renderError(w, err)
		return
	}
	title := q.Get("title")
	if title == "" {
		title = "codelines"
	}
	markdown.Page(w, title, css.String(), body.Bytes())
}

func (s *Server) handleBatchRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format := r.FormValue("format")
	switch format {
	case "":
		format = pipeline.FormatHTML
	case pipeline.FormatHTML, pipeline.FormatDOCX:
	default:
		jsonError(w, fmt.Sprintf("unsupported format: %s", format), http.StatusBadRequest)
		return
	}
	opts := codeblock.RenderOptions{
		Section:         r.FormValue("section"),
		IsolateContext:  queryBool(r.FormValue("isolate"), false),
		ShowLineNumbers: queryBool(r.FormValue("line_numbers"), s.cfg.ShowLineNumbers),
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(filename, format, opts, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"job_id":   job.ID,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename":   filename,
			"job_id":     job.ID,
			"status":     pipeline.StatusQueued,
			"poll_url":   fmt.Sprintf("/api/render/%s/status", job.ID),
			"result_url": fmt.Sprintf("/api/render/%s/result", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleRenderResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	out, contentType, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}

	etag := fmt.Sprintf("%q", job.ContentHash[:16]+"-"+job.Format)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Write(out)
}

// renderError maps block validation failures to 422 and everything else
// to 500.
func (s *Server) renderError(w http.ResponseWriter, err error) {
	var (
		missing  *codeblock.MissingSectionNameError
		dup      *codeblock.DuplicateSectionError
		unclosed *codeblock.UnclosedSectionError
		notFound *codeblock.SectionNotFoundError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &dup), errors.As(err, &unclosed),
		errors.As(err, &notFound), errors.Is(err, config.ErrRuleVeto):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("render failed", "error", err)
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func queryBool(v string, fallback bool) bool {
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
