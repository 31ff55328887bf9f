package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Cfg holds all runtime configuration.
type Cfg struct {
	// Server
	ListenAddr string // e.g. :8080
	LogLevel   string // LOG_LEVEL=debug|info|warn|error

	// Link classification
	ClassifyLinks       bool          // CLASSIFY_LINKS=true resolves link media kinds with HEAD requests
	ClassifyTimeout     time.Duration // CLASSIFY_TIMEOUT=5s per lookup
	ClassifyConcurrency int           // CLASSIFY_CONCURRENCY=4 lookups in flight per request
	MediaCachePath      string        // MEDIA_CACHE_PATH=/data/media.db (empty = in-memory)

	// Tokenizer defaults, overridable per request
	IncludeBareNIP19 bool // INCLUDE_BARE_NIP19=true detects npub1... without "nostr:"
	RestrictHashtags bool // RESTRICT_HASHTAGS=false keeps hashtags without a "t" tag

	MaxTextBytes int // MAX_TEXT_BYTES=1048576 rejects larger request bodies
}

// fileCfg mirrors Cfg in the optional TOML file. Absent keys keep defaults.
type fileCfg struct {
	Port                *string `toml:"port"`
	LogLevel            *string `toml:"log_level"`
	ClassifyLinks       *bool   `toml:"classify_links"`
	ClassifyTimeout     *string `toml:"classify_timeout"`
	ClassifyConcurrency *int    `toml:"classify_concurrency"`
	MediaCachePath      *string `toml:"media_cache_path"`
	IncludeBareNIP19    *bool   `toml:"include_bare_nip19"`
	RestrictHashtags    *bool   `toml:"restrict_hashtags"`
	MaxTextBytes        *int    `toml:"max_text_bytes"`
}

// Default returns the built-in configuration.
func Default() *Cfg {
	return &Cfg{
		ListenAddr:          ":8080",
		LogLevel:            "info",
		ClassifyTimeout:     5 * time.Second,
		ClassifyConcurrency: 4,
		RestrictHashtags:    true,
		MaxTextBytes:        1 << 20,
	}
}

// Load builds Cfg from defaults, then the TOML file named by NOTETOKEN_CONFIG
// (if set), then .env (if present) and environment variables.
func Load() (*Cfg, error) {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	cfg := Default()
	if path := env("NOTETOKEN_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Cfg) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	var fc fileCfg
	if err := toml.NewDecoder(file).Decode(&fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Port != nil {
		c.ListenAddr = ":" + strings.TrimPrefix(*fc.Port, ":")
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.ClassifyLinks != nil {
		c.ClassifyLinks = *fc.ClassifyLinks
	}
	if fc.ClassifyTimeout != nil {
		d, err := time.ParseDuration(*fc.ClassifyTimeout)
		if err != nil {
			return fmt.Errorf("config: classify_timeout: %w", err)
		}
		c.ClassifyTimeout = d
	}
	if fc.ClassifyConcurrency != nil {
		c.ClassifyConcurrency = *fc.ClassifyConcurrency
	}
	if fc.MediaCachePath != nil {
		c.MediaCachePath = *fc.MediaCachePath
	}
	if fc.IncludeBareNIP19 != nil {
		c.IncludeBareNIP19 = *fc.IncludeBareNIP19
	}
	if fc.RestrictHashtags != nil {
		c.RestrictHashtags = *fc.RestrictHashtags
	}
	if fc.MaxTextBytes != nil {
		c.MaxTextBytes = *fc.MaxTextBytes
	}
	return nil
}

func (c *Cfg) applyEnv() error {
	if port := env("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
	if lvl := env("LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
	if raw := env("CLASSIFY_LINKS"); raw != "" {
		c.ClassifyLinks = parseBool(raw)
	}
	if raw := env("CLASSIFY_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: CLASSIFY_TIMEOUT: %w", err)
		}
		c.ClassifyTimeout = d
	}
	if raw := env("CLASSIFY_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: CLASSIFY_CONCURRENCY: %w", err)
		}
		c.ClassifyConcurrency = n
	}
	if path := env("MEDIA_CACHE_PATH"); path != "" {
		c.MediaCachePath = path
	}
	if raw := env("INCLUDE_BARE_NIP19"); raw != "" {
		c.IncludeBareNIP19 = parseBool(raw)
	}
	if raw := env("RESTRICT_HASHTAGS"); raw != "" {
		c.RestrictHashtags = parseBool(raw)
	}
	if raw := env("MAX_TEXT_BYTES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: MAX_TEXT_BYTES: %w", err)
		}
		c.MaxTextBytes = n
	}
	return nil
}

func (c *Cfg) validate() error {
	var errs []error
	if c.ClassifyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: classify timeout must be positive, got %s", c.ClassifyTimeout))
	}
	if c.ClassifyConcurrency < 1 {
		errs = append(errs, fmt.Errorf("config: classify concurrency must be at least 1, got %d", c.ClassifyConcurrency))
	}
	if c.MaxTextBytes < 1 {
		errs = append(errs, fmt.Errorf("config: max text bytes must be positive, got %d", c.MaxTextBytes))
	}
	return errors.Join(errs...)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseBool(raw string) bool {
	return raw == "1" || strings.EqualFold(raw, "true")
}
