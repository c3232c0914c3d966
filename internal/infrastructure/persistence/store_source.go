package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ensure SQLRowSource implements report.RowSource
var _ report.RowSource = (*SQLRowSource)(nil)

const seedBatchSize = 500

// SQLRowSource reads each entity's rows from the table named after its store
type SQLRowSource struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLRowSource creates a new SQLRowSource
func NewSQLRowSource(db *gorm.DB, logger *zap.Logger) *SQLRowSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLRowSource{db: db, logger: logger}
}

// ReadAll returns every row of the entity's table in load order. A missing table
// fails with report.ErrStoreNotFound.
func (s *SQLRowSource) ReadAll(ctx context.Context, entity report.EntityType) ([]report.Row, error) {
	table := entity.StoreName()
	db := s.db.WithContext(ctx)

	if !db.Migrator().HasTable(table) {
		return nil, fmt.Errorf("%w: table %s", report.ErrStoreNotFound, table)
	}

	var results []map[string]any
	if err := db.Table(table).Order(models.SeqColumn).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	rows := make([]report.Row, 0, len(results))
	for _, result := range results {
		row := make(report.Row, len(result))
		for column, value := range result {
			if column == models.SeqColumn {
				continue
			}
			row[column] = toText(value)
		}
		rows = append(rows, row)
	}

	s.logger.Debug("Store table read", zap.String("table", table), zap.Int("rows", len(rows)))
	return rows, nil
}

// Replace deletes the entity's rows and inserts rows in their place, in order.
// Row keys that are not columns of the table are ignored.
func (s *SQLRowSource) Replace(ctx context.Context, entity report.EntityType, rows []report.Row) error {
	model, ok := models.ForEntity(entity)
	if !ok {
		return fmt.Errorf("%w: %s", report.ErrStoreNotFound, entity)
	}

	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Errorf("failed to parse model for %s: %w", entity.StoreName(), err)
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(stmt.Schema.DBNames))
		for _, column := range stmt.Schema.DBNames {
			if column == models.SeqColumn {
				continue
			}
			if v, ok := row[column]; ok {
				record[column] = v
			}
		}
		records = append(records, record)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", entity.StoreName(), err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Table(entity.StoreName()).CreateInBatches(records, seedBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert into %s: %w", entity.StoreName(), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Store table replaced", zap.String("table", entity.StoreName()), zap.Int("rows", len(rows)))
	return nil
}

// Check pings the database
func (s *SQLRowSource) Check(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// toText renders a scanned column value the way it would appear in a store file
func toText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(report.DateLayout)
		}
		return val.Format(time.DateTime)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
