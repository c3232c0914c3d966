// Command seed loads the <store>.csv files of a directory into the configured
// sql, redis or s3 backing store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/erp/salesreport/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		dataDir  string
		driver   string
		logLevel string
		timeout  time.Duration
	)
	flag.StringVar(&dataDir, "dir", "", "Directory holding the store CSV files (default: store.data_dir)")
	flag.StringVar(&driver, "driver", "", "Target store driver: sql, redis or s3 (default: store.driver)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Upper bound on the whole load")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if dataDir == "" {
		dataDir = cfg.Store.DataDir
	}
	if driver == "" {
		driver = cfg.Store.Driver
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("Seeding store",
		zap.String("driver", driver),
		zap.String("dir", dataDir),
	)

	files, err := readStoreFiles(dataDir, cfg.Store.DelimiterRune())
	if err != nil {
		log.Fatal("Failed to read store files", zap.Error(err))
	}

	target, err := openTarget(driver, cfg, log)
	if err != nil {
		log.Fatal("Failed to open target store", zap.Error(err))
	}
	defer func() {
		if err := target.Close(); err != nil {
			log.Error("Error closing target store", zap.Error(err))
		}
	}()

	if err := load(ctx, target, files); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeding complete", zap.Int("stores", len(files)))
}
