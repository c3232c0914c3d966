package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure RedisRowSource implements report.RowSource
var _ report.RowSource = (*RedisRowSource)(nil)

const defaultKeyPrefix = "salesreport"

// RedisRowSource reads each entity's rows from a Redis list at
// <prefix>:store:<store name>. Every list element is one row encoded as a JSON object.
// Loaded store names are kept in the set <prefix>:stores, since Redis drops empty lists.
// This is suitable for deployments where several instances share one snapshot.
type RedisRowSource struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisRowSource connects to Redis and returns a row source over it
func NewRedisRowSource(cfg config.RedisConfig, logger *zap.Logger) (*RedisRowSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := NewRedisRowSourceWithClient(client, cfg.KeyPrefix)
	if logger != nil {
		s.logger = logger
	}
	return s, nil
}

// NewRedisRowSourceWithClient creates a row source with an existing Redis client
func NewRedisRowSourceWithClient(client *redis.Client, keyPrefix string) *RedisRowSource {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisRowSource{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    zap.NewNop(),
	}
}

// Key returns the list key backing entity
func (s *RedisRowSource) Key(entity report.EntityType) string {
	return s.keyPrefix + ":store:" + entity.StoreName()
}

// RegistryKey returns the key of the set of loaded stores
func (s *RedisRowSource) RegistryKey() string {
	return s.keyPrefix + ":stores"
}

// ReadAll returns every row of the entity's list in list order. A missing key
// fails with report.ErrStoreNotFound.
func (s *RedisRowSource) ReadAll(ctx context.Context, entity report.EntityType) ([]report.Row, error) {
	key := s.Key(entity)

	loaded, err := s.client.SIsMember(ctx, s.RegistryKey(), entity.StoreName()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check store %s: %w", entity.StoreName(), err)
	}
	if !loaded {
		return nil, fmt.Errorf("%w: redis key %s", report.ErrStoreNotFound, key)
	}

	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	rows := make([]report.Row, 0, len(values))
	for i, v := range values {
		row, err := decodeRow([]byte(v))
		if err != nil {
			return nil, &report.RowError{Store: entity.StoreName(), Row: i + 1, Err: err}
		}
		rows = append(rows, row)
	}

	s.logger.Debug("Store list read", zap.String("key", key), zap.Int("rows", len(rows)))
	return rows, nil
}

// Replace atomically swaps the entity's list for rows
func (s *RedisRowSource) Replace(ctx context.Context, entity report.EntityType, rows []report.Row) error {
	key := s.Key(entity)

	values := make([]any, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		values = append(values, string(data))
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
		}
		pipe.SAdd(ctx, s.RegistryKey(), entity.StoreName())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	s.logger.Info("Store list replaced", zap.String("key", key), zap.Int("rows", len(rows)))
	return nil
}

// Check pings Redis
func (s *RedisRowSource) Check(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisRowSource) Close() error {
	return s.client.Close()
}

// decodeRow decodes one JSON object into a row. Numbers keep their literal text.
func decodeRow(data []byte) (report.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid row JSON: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid row JSON: not an object")
	}

	row := make(report.Row, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			row[k] = ""
		case string:
			row[k] = val
		case json.Number:
			row[k] = val.String()
		case bool:
			row[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("invalid row JSON: field %q is not a scalar", k)
		}
	}
	return row, nil
}
