package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feedkit/feedkit/pkg/cache"
	"github.com/feedkit/feedkit/pkg/clock"
	"github.com/feedkit/feedkit/pkg/event"
	"github.com/feedkit/feedkit/pkg/logging"
	"github.com/feedkit/feedkit/pkg/overlay"
	"github.com/feedkit/feedkit/pkg/paging"
	"github.com/feedkit/feedkit/pkg/readiness"
	"github.com/feedkit/feedkit/pkg/scroll"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("feedbrowse %s\n", version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLogs, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLogs()

	logger.Info().
		Str("version", version).
		Str("cache_backend", cfg.Cache.Backend).
		Int("batch_size", cfg.Fetch.BatchSize).
		Msg("Starting feedbrowse")

	clk := clock.System()
	bus := event.NewBus(logger)

	store, err := openStore(cfg, clk, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	manager := cache.NewManager(store, bus, clk, logger)
	source := newFeedSource(cfg.Fetch, routes[0])
	paged := &cachedSource{src: source, mgr: manager, ttl: cfg.Cache.TTL}

	coordinator, err := paging.NewCoordinator[feedItem](paged, paging.Config{
		BatchSize: cfg.Fetch.BatchSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("create coordinator: %w", err)
	}

	tracker := readiness.NewTracker(readiness.Config{
		MinSkeletonDuration: cfg.Skeleton.MinDuration,
		FadeOutDuration:     cfg.Skeleton.FadeOut,
	}, clk, logger)
	defer tracker.Close()

	machine := overlay.NewMachine(overlay.Config{
		MinVisible: cfg.Overlay.MinVisible,
		MaxVisible: cfg.Overlay.MaxVisible,
		FadeOut:    cfg.Overlay.FadeOut,
	}, clk, logger)
	defer machine.Close()

	detach := machine.Attach(bus)
	defer detach()

	loadReq := make(chan struct{}, 1)
	trigger, err := scroll.NewTrigger(scroll.TriggerConfig{Margin: 5}, func() {
		select {
		case loadReq <- struct{}{}:
		default:
		}
	}, logger)
	if err != nil {
		return fmt.Errorf("create trigger: %w", err)
	}

	estimator, err := scroll.NewEstimator(scroll.EstimatorConfig{
		ItemExtent:   1,
		ViewportSize: 24,
		Overscan:     5,
	}, clk, nil, logger)
	if err != nil {
		return fmt.Errorf("create estimator: %w", err)
	}
	defer estimator.Close()

	stabilizer := scroll.NewStabilizer(scroll.StabilizerConfig{
		NearBottomThreshold: 3,
		OffsetTolerance:     0.5,
	}, logger)

	m := newModel(appDeps{
		cfg:         cfg,
		logger:      logger,
		bus:         bus,
		source:      source,
		coordinator: coordinator,
		tracker:     tracker,
		machine:     machine,
		trigger:     trigger,
		estimator:   estimator,
		stabilizer:  stabilizer,
		loadReq:     loadReq,
		backend:     manager.Backend(),
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Error().Err(err).Msg("TUI error")
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info().Msg("Shutting down")
	return nil
}

// openStore builds the configured cache backend. The Redis connection
// is verified up front so a bad address fails before the TUI starts.
func openStore(cfg *Config, clk clock.Clock, logger zerolog.Logger) (cache.Store, error) {
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis at %s: %w", cfg.Redis.Addr, err)
		}
		return cache.NewRedisStore(client, clk, logger), nil
	}
	return cache.NewMemoryStore(cache.DefaultMemoryConfig(), clk, logger), nil
}

// setupLogging routes logs to the configured file, or discards them so
// they never corrupt the TUI output.
func setupLogging(cfg LogConfig) (zerolog.Logger, func(), error) {
	if cfg.File == "" {
		return logging.Setup(logging.Config{
			Level:  logging.LogLevel(cfg.Level),
			Output: io.Discard,
		}), func() {}, nil
	}

	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Level),
		Output: f,
	})
	return logger, func() { f.Close() }, nil
}
