// cmd/brandtrust/wire.go

package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"

	"brandtrust/internal/adapter/events"
	"brandtrust/internal/adapter/gemini"
	"brandtrust/internal/adapter/storage"
	"brandtrust/internal/config"
	"brandtrust/internal/httpx"
	"brandtrust/internal/server/handlers"
	"brandtrust/internal/service/analysis"
	"brandtrust/internal/service/collect"
	reportsvc "brandtrust/internal/service/report"
	"brandtrust/internal/service/scoring"
	"brandtrust/internal/source/reddit"
	"brandtrust/internal/source/serp"
	"brandtrust/internal/source/twitter"
	"brandtrust/internal/source/website"
)

// app holds the wired pipeline and its optional side services
type app struct {
	cfg      config.Config
	analyzer *analysis.Analyzer
	store    *storage.ReportStore
	events   *events.Publisher
	db       *pgxpool.Pool
}

// buildApp wires the full pipeline from configuration. The report archive
// and event bus are wired only when configured.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	client := httpx.New(httpx.Options{
		MaxRetries:     cfg.Collect.MaxRetries,
		BackoffBase:    cfg.Collect.BackoffBase,
		BackoffMax:     cfg.Collect.BackoffMax,
		RequestsPerSec: cfg.Collect.RequestsPerSec,
		Burst:          cfg.Collect.Burst,
	})

	orchestrator := collect.New(cfg.Collect,
		serp.New(cfg.Serp, client),
		reddit.New(cfg.Reddit, client),
		twitter.New(cfg.Twitter),
		website.New(cfg.Website, client),
	)

	scorer := scoring.New(gemini.New(cfg.Gemini))
	builder := reportsvc.New(cfg.Report)

	publisher, err := events.Connect(cfg.NATS)
	if err != nil {
		return nil, err
	}
	a.events = publisher

	if cfg.Database.URL != "" {
		db, err := connectDatabase(ctx, cfg.Database)
		if err != nil {
			a.close()
			return nil, err
		}
		a.db = db
		a.store = storage.NewReportStore(db)
		log.Info().Msg("report archive enabled")
	}

	var archive analysis.Archive
	if a.store != nil {
		archive = a.store
	}
	a.analyzer = analysis.New(orchestrator, scorer, builder, publisher, archive)
	return a, nil
}

// readArchive adapts the optional store to the handler interface without
// handing a typed nil to the server
func (a *app) readArchive() handlers.ReportArchive {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *app) close() {
	a.events.Close()
	if a.db != nil {
		a.db.Close()
	}
}

// connectDatabase opens the archive pool and verifies connectivity
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return db, nil
}
