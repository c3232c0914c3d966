package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/cache"
	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/erp/salesreport/internal/infrastructure/csvstore"
	"github.com/erp/salesreport/internal/infrastructure/logger"
	"github.com/erp/salesreport/internal/infrastructure/persistence"
	"github.com/erp/salesreport/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// storeFile is one parsed store CSV together with its raw bytes
type storeFile struct {
	entity report.EntityType
	raw    []byte
	rows   []report.Row
}

// target receives the store files. Row targets get parsed rows, object
// targets get the raw file.
type target interface {
	put(ctx context.Context, f storeFile) error
	Close() error
}

// readStoreFiles reads and parses the file of every entity type in dir.
// A missing file is an error; the report needs all six stores.
func readStoreFiles(dir string, delimiter rune) ([]storeFile, error) {
	src := csvstore.NewFileSource(dir)
	files := make([]storeFile, 0, len(report.EntityTypes()))
	for _, entity := range report.EntityTypes() {
		raw, err := os.ReadFile(src.Path(entity))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entity.StoreName(), err)
		}
		rows, err := csvstore.ParseRows(bytes.NewReader(raw), csvstore.WithDelimiter(delimiter))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entity.StoreName(), err)
		}
		files = append(files, storeFile{entity: entity, raw: raw, rows: rows})
	}
	return files, nil
}

func load(ctx context.Context, t target, files []storeFile) error {
	for _, f := range files {
		if err := t.put(ctx, f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f.entity.StoreName(), err)
		}
	}
	return nil
}

func openTarget(driver string, cfg *config.Config, log *zap.Logger) (target, error) {
	switch driver {
	case config.StoreDriverSQL:
		return openSQLTarget(&cfg.Database, log)
	case config.StoreDriverRedis:
		src, err := cache.NewRedisRowSource(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return &redisTarget{src: src}, nil
	case config.StoreDriverS3:
		src, err := storage.NewS3RowSource(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return &s3Target{src: src}, nil
	case config.StoreDriverCSV:
		return nil, fmt.Errorf("the csv driver reads the data directory directly, nothing to seed")
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

type sqlTarget struct {
	db  *persistence.Database
	src *persistence.SQLRowSource
}

func openSQLTarget(cfg *config.DatabaseConfig, log *zap.Logger) (*sqlTarget, error) {
	db, err := persistence.NewDatabase(cfg, logger.NewGormLogger(log, "warn"))
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqlTarget{db: db, src: persistence.NewSQLRowSource(db.DB, log)}, nil
}

func (t *sqlTarget) put(ctx context.Context, f storeFile) error {
	return t.src.Replace(ctx, f.entity, f.rows)
}

func (t *sqlTarget) Close() error { return t.db.Close() }

type redisTarget struct {
	src *cache.RedisRowSource
}

func (t *redisTarget) put(ctx context.Context, f storeFile) error {
	return t.src.Replace(ctx, f.entity, f.rows)
}

func (t *redisTarget) Close() error { return t.src.Close() }

type s3Target struct {
	src *storage.S3RowSource
}

func (t *s3Target) put(ctx context.Context, f storeFile) error {
	return t.src.Upload(ctx, f.entity, f.raw)
}

func (t *s3Target) Close() error { return nil }
