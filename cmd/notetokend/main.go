package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gonkalabs/notetoken/internal/api"
	"github.com/gonkalabs/notetoken/internal/config"
	"github.com/gonkalabs/notetoken/internal/content"
	"github.com/gonkalabs/notetoken/internal/content/headprobe"
	"github.com/gonkalabs/notetoken/internal/mediacache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	tok := content.New()
	if cfg.ClassifyLinks {
		var cache content.Cache = content.NewMemoryCache()
		if cfg.MediaCachePath != "" {
			store, err := mediacache.Open(cfg.MediaCachePath)
			if err != nil {
				slog.Error("media cache error", "path", cfg.MediaCachePath, "err", err)
				os.Exit(1)
			}
			defer store.Close()
			cache = store
			slog.Info("media cache: sqlite", "path", store.Path())
		}
		tok = content.NewWithClassifier(headprobe.New(cfg.ClassifyTimeout), cache, cfg.ClassifyConcurrency)
		slog.Info("link classification enabled",
			"timeout", cfg.ClassifyTimeout,
			"concurrency", cfg.ClassifyConcurrency,
		)
	}

	defaults := content.Options{
		IncludeBareProtocolReferences: cfg.IncludeBareNIP19,
		RestrictTagsToAnnotations:     cfg.RestrictHashtags,
	}
	handler := api.New(tok, defaults, cfg.ClassifyLinks, cfg.MaxTextBytes)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)

		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()

		if err := srv.Shutdown(shutCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("starting tokenizer server",
		"addr", cfg.ListenAddr,
		"classify", cfg.ClassifyLinks,
		"bareNip19", cfg.IncludeBareNIP19,
		"restrictHashtags", cfg.RestrictHashtags,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
