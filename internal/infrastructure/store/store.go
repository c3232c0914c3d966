// Package store opens the configured backing store for the report entities.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/cache"
	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/erp/salesreport/internal/infrastructure/csvstore"
	"github.com/erp/salesreport/internal/infrastructure/logger"
	"github.com/erp/salesreport/internal/infrastructure/persistence"
	"github.com/erp/salesreport/internal/infrastructure/storage"
	"github.com/erp/salesreport/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Backend is a row source that can report its own reachability
type Backend interface {
	report.RowSource
	Check(ctx context.Context) error
}

// Store is the opened backing store: the row source used by the report
// engine, plus the raw backend behind any cache
type Store struct {
	driver  string
	backend Backend
	source  report.RowSource
	closers []func() error
}

// Open builds the backend selected by cfg.Store.Driver and wraps it in a
// read-through cache when cfg.Store.CacheTTL is positive
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{driver: cfg.Store.Driver}
	parserOpts := []csvstore.ParserOption{csvstore.WithDelimiter(cfg.Store.DelimiterRune())}

	switch cfg.Store.Driver {
	case config.StoreDriverCSV:
		s.backend = csvstore.NewFileSource(cfg.Store.DataDir,
			csvstore.WithParserOptions(parserOpts...),
			csvstore.WithLogger(log),
		)

	case config.StoreDriverS3:
		src, err := storage.NewS3RowSource(&cfg.Storage,
			storage.WithParserOptions(parserOpts...),
			storage.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open s3 store: %w", err)
		}
		s.backend = src

	case config.StoreDriverSQL:
		db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, cfg.Log.Level))
		if err != nil {
			return nil, fmt.Errorf("failed to open sql store: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		if cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing {
			if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, log); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		s.backend = persistence.NewSQLRowSource(db.DB, log)

	case config.StoreDriverRedis:
		src, err := cache.NewRedisRowSource(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		s.backend = src
		s.closers = append(s.closers, src.Close)

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	s.source = s.backend
	if cfg.Store.CacheTTL > 0 {
		s.source = cache.NewCachedRowSource(s.backend, cfg.Store.CacheTTL, cache.WithCacheLogger(log))
	}

	log.Info("Backing store opened",
		zap.String("driver", s.driver),
		zap.Duration("cache_ttl", cfg.Store.CacheTTL),
	)
	return s, nil
}

// Driver returns the configured driver name
func (s *Store) Driver() string {
	return s.driver
}

// Source returns the row source reports read from
func (s *Store) Source() report.RowSource {
	return s.source
}

// Backend returns the uncached backend
func (s *Store) Backend() Backend {
	return s.backend
}

// Check reports whether the backend is reachable, bypassing any cache
func (s *Store) Check(ctx context.Context) error {
	return s.backend.Check(ctx)
}

// Close releases backend connections
func (s *Store) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
