package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/codelines/internal/api"
	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/config"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/pipeline"
	"github.com/dgallion1/codelines/internal/render"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var rules []codeblock.RedactionRule
	if cfg.RedactionRules != "" {
		var err error
		rules, err = config.LoadRules(cfg.RedactionRules)
		if err != nil {
			log.Error("invalid redaction rules", "path", cfg.RedactionRules, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := highlight.New(cfg.Style)
	opts := codeblock.Options{
		Annotations: cfg.Mode(),
		Redactions:  rules,
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, h, opts, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, render.New(h, opts), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Drain HTTP first so no handler submits to a stopped queue.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown failed", "error", err)
		}

		orch.Stop()
	}()

	log.Info("starting codelines",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"style", h.Style().Name,
		"annotation_mode", opts.Annotations,
		"redaction_rules", len(rules),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}
