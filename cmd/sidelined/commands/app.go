package commands

import (
	"context"
	"log"

	"github.com/fortuna/sidelined/internal/config"
	"github.com/fortuna/sidelined/internal/ingest"
	"github.com/fortuna/sidelined/internal/ingest/bref"
	"github.com/fortuna/sidelined/internal/ingest/spotrac"
	"github.com/fortuna/sidelined/internal/metrics"
	"github.com/fortuna/sidelined/internal/pipeline"
	"github.com/fortuna/sidelined/internal/publisher"
	"github.com/fortuna/sidelined/internal/service"
	"github.com/fortuna/sidelined/internal/store"
)

// app holds the components one command invocation shares.
type app struct {
	cfg         *config.Config
	injuries    *spotrac.Client
	performance *bref.Client
	runner      *pipeline.Runner
	db          *store.Database
	closers     []func()
}

// buildApp is swapped in tests.
var buildApp = newApp

func newApp(cfg *config.Config, m *metrics.Manager) (*app, error) {
	fetcher, closeFetcher, err := ingest.NewFetcher(ingest.FetchMode(cfg.FetchMode), cfg.HTTPTimeout, cfg.UserAgent, nil)
	if err != nil {
		return nil, err
	}

	injuries := spotrac.New(fetcher, cfg.SpotracBaseURL, nil)
	performance := bref.New(fetcher, cfg.BrefBaseURL, nil)

	return &app{
		cfg:         cfg,
		injuries:    injuries,
		performance: performance,
		runner:      pipeline.NewRunner(injuries, performance, service.NewAllocationService(nil), m),
		closers:     []func(){closeFetcher},
	}, nil
}

// archiveSinks connects the Postgres and Redis sinks that are configured.
func (a *app) archiveSinks(ctx context.Context) ([]pipeline.Sink, error) {
	var sinks []pipeline.Sink

	if a.cfg.AtlasDSN != "" {
		db, err := a.database(ctx)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, store.NewWinsLostRepository(db))
	}

	if a.cfg.RedisURL != "" {
		pub, err := publisher.NewRedisPublisher(ctx, a.cfg.RedisURL, nil)
		if err != nil {
			return nil, err
		}
		log.Println("✓ Connected to Redis")
		a.closers = append(a.closers, func() { pub.Close() })
		sinks = append(sinks, pub)
	}

	return sinks, nil
}

// database connects and migrates once per invocation.
func (a *app) database(ctx context.Context) (*store.Database, error) {
	if a.db != nil {
		return a.db, nil
	}

	db, err := store.NewDatabase(ctx, a.cfg.AtlasDSN, nil)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { db.Close() })
	log.Println("✓ Connected to Atlas database")

	if err := db.RunMigrations(ctx); err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
