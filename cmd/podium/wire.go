package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/roster"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/fallback"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
)

// Flag names shared by several commands.
const (
	flagConfig      = "config"
	flagRoster      = "roster"
	flagCompetition = "competition"
	flagMaxTeams    = "max-teams"
	flagCommit      = "commit"
)

var errNoRoster = errors.New("no roster configured: set roster_path or database_dsn")

// setup loads configuration and initializes the global logger.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadFile(c.Context, c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if err := logger.InitWithFormat(cfg.LogFormat, os.Stderr); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// openDB connects when a DSN is configured. The returned close func is never nil.
func openDB(ctx context.Context, cfg *config.Config) (*bun.DB, func(), error) {
	if cfg.DatabaseDSN == "" {
		return nil, func() {}, nil
	}
	db := repository.OpenDB(cfg.DatabaseDSN)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

// buildService wires the service from configuration. rosterPath overrides
// cfg.RosterPath; without either the roster is read from the database.
func buildService(cfg *config.Config, db *bun.DB, rosterPath string, extra ...service.Option) (*service.Service, error) {
	if rosterPath == "" {
		rosterPath = cfg.RosterPath
	}

	opts := []service.Option{
		service.WithLogger(logger.Get().Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDefaultMaxTeams(cfg.MaxTeams),
		service.WithInterImageDelay(cfg.InterImageDelay()),
		service.WithRateLimitWait(cfg.RateLimitWait()),
		service.WithKillPoints(cfg.KillPoints),
		service.WithCache(cache.NewMemoryStore(cache.WithMaxSize(cfg.CacheSize))),
		service.WithExtractor(extraction.NewHTTPClient(
			extraction.WithEndpoint(cfg.ExtractionEndpoint),
			extraction.WithModel(cfg.ExtractionModel),
			extraction.WithAPIKey(cfg.ExtractionAPIKey),
			extraction.WithTimeout(cfg.ExtractionTimeout()),
		)),
	}

	policy, err := correlate.ParseReusePolicy(cfg.TeamReuse)
	if err != nil {
		return nil, err
	}
	opts = append(opts, service.WithReusePolicy(policy))

	if cfg.FallbackSeed != 0 {
		opts = append(opts, service.WithFallback(fallback.New(fallback.WithSeed(cfg.FallbackSeed))))
	}

	if len(cfg.PlacementPoints) > 0 {
		rules, skipped := scoring.RulesFromConfig(cfg.PlacementPoints, cfg.KillPoints)
		if len(skipped) > 0 {
			logger.Get().Warn(context.Background(), "ignoring placement_points keys", logger.Strings("keys", skipped))
		}
		opts = append(opts, service.WithDefaultRules(rules))
	}

	switch {
	case rosterPath != "":
		static, err := roster.Open(rosterPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithRoster(static))
	case db != nil:
		opts = append(opts, service.WithRoster(repository.NewBunStore(db)))
	default:
		return nil, errNoRoster
	}

	if db != nil {
		opts = append(opts, service.WithResultStore(repository.NewBunStore(db)))
	}

	return service.New(append(opts, extra...)...), nil
}

// loadImages reads screenshots from disk in argument order.
func loadImages(paths []string) ([]extraction.Image, error) {
	images := make([]extraction.Image, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat image: %w", err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(p))
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		images = append(images, extraction.Image{
			Name:     filepath.Base(p),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			MIMEType: mimeType,
			Data:     data,
		})
	}
	return images, nil
}
