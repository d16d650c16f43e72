package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/cv-wizard/internal/browser"
	"github.com/jonathan/cv-wizard/internal/config"
	"github.com/jonathan/cv-wizard/internal/db"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/pages"
	"github.com/jonathan/cv-wizard/internal/storage"
)

// loadConfig resolves the effective configuration: environment first, then
// the optional JSON file, then the package defaults.
func loadConfig(path string) (config.Config, error) {
	env := config.FromEnv()

	var file config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		file = *loaded
	}

	cfg := env.MergeWithDefaults(file)
	cfg.Verbose = verbose || file.Verbose
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStorage builds the snapshot backend named by cfg. The returned closers
// release its connections.
func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, []func() error, error) {
	backend, err := storage.ParseBackend(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	var (
		st      storage.Storage
		closers []func() error
	)
	switch backend {
	case storage.BackendRedis:
		r, err := storage.NewRedis(ctx, storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      cfg.SessionTTL(),
		})
		if err != nil {
			return nil, nil, err
		}
		st = r
		closers = append(closers, r.Close)
	case storage.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL, cfg.SessionTTL())
		if err != nil {
			return nil, nil, err
		}
		if n, err := database.PurgeExpired(ctx); err != nil {
			log.Printf("[STORAGE] purge of expired snapshots failed: %v", err)
		} else if n > 0 {
			log.Printf("[STORAGE] purged %d expired snapshots", n)
		}
		st = database
		closers = append(closers, func() error {
			database.Close()
			return nil
		})
	default:
		st = storage.NewMemory(cfg.SessionTTL())
	}

	if cfg.SnapshotKey != "" {
		sealed, err := storage.NewSealedHex(st, cfg.SnapshotKey)
		if err != nil {
			for _, closeFn := range closers {
				_ = closeFn()
			}
			return nil, nil, fmt.Errorf("failed to seal snapshot storage: %w", err)
		}
		st = sealed
	}

	log.Printf("[STORAGE] using %s snapshot storage (sealed=%t)", backend, cfg.SnapshotKey != "")
	return st, closers, nil
}

// newRasterizer builds the capture collaborator. Tests replace it.
var newRasterizer = func(cfg config.Config) export.Rasterizer {
	return browser.New(browser.Options{
		ExecPath: cfg.ChromePath,
		Timeout:  cfg.CaptureTimeoutDuration(),
		Verbose:  cfg.Verbose,
	})
}

// newAssembler builds the page assembly collaborator.
func newAssembler(cfg config.Config) (export.Assembler, error) {
	paper, err := pages.ParsePaperSize(cfg.PaperSize)
	if err != nil {
		return nil, err
	}
	return pages.NewAssembler(paper), nil
}

func captureOptions(cfg config.Config) browser.CaptureOptions {
	opts := browser.DefaultCaptureOptions()
	opts.Scale = cfg.CaptureScale
	opts.Logging = cfg.Verbose
	return opts
}
