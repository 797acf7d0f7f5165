package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	mode := s.renderer.Options.Annotations
	if mode == "" {
		mode = codeblock.ModeStrip
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth":       s.orchestrator.QueueDepth(),
		"jobs":              s.orchestrator.JobCount(),
		"workers":           s.cfg.WorkerCount,
		"languages":         len(highlight.Languages()),
		"annotation_mode":   mode,
		"redaction_rules":   len(s.renderer.Options.Redactions),
		"render_latency":    s.orchestrator.Stats().Snapshot(),
		"latency_by_format": s.orchestrator.Stats().ByFormat(),
	})
}

// handleStyleCSS serves the stylesheet for a chroma style by name.
func (s *Server) handleStyleCSS(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !slices.Contains(highlight.Styles(), name) {
		jsonError(w, "unknown style: "+name, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := highlight.New(name).WriteCSS(w); err != nil {
		s.log.Error("write css failed", "style", name, "error", err)
	}
}
