package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/salesreport/internal/domain/report"
	"go.uber.org/zap"
)

// RecordFilter scans an entity's backing store and keeps the rows whose column
// value contains a filter value. Containment, not equality: filtering order lines
// by order_id "1" also matches order_id "10".
type RecordFilter struct {
	source report.RowSource
	logger *zap.Logger
}

// NewRecordFilter creates a RecordFilter reading from source
func NewRecordFilter(source report.RowSource, logger *zap.Logger) *RecordFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordFilter{
		source: source,
		logger: logger,
	}
}

// FilterRecords validates the column and entity names, then returns the matching
// records of that entity. Unknown names fail with report.ErrInvalidQuery before
// the store is touched.
func (f *RecordFilter) FilterRecords(ctx context.Context, filterValue, columnName, entityName string) ([]report.Record, error) {
	column, columnOK := report.ParseColumn(columnName)
	entity, entityOK := report.ParseEntityType(entityName)
	if !columnOK || !entityOK {
		f.logger.Error("Invalid record filter query",
			zap.String("column", columnName),
			zap.String("entity", entityName),
		)
		return nil, report.ErrInvalidQuery
	}
	return f.filter(ctx, entity, column, filterValue)
}

// Filter returns the records of T's entity type whose column contains value
func Filter[T report.Record](ctx context.Context, f *RecordFilter, value string, column report.Column) ([]T, error) {
	var zero T
	records, err := f.filter(ctx, zero.EntityType(), column, value)
	if err != nil {
		return nil, err
	}

	typed := make([]T, 0, len(records))
	for _, r := range records {
		t, ok := r.(T)
		if !ok {
			return nil, fmt.Errorf("record of type %T does not match %T", r, zero)
		}
		typed = append(typed, t)
	}
	return typed, nil
}

func (f *RecordFilter) filter(ctx context.Context, entity report.EntityType, column report.Column, value string) ([]report.Record, error) {
	binding, ok := recordBindings[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", report.ErrStoreNotFound, entity)
	}

	rows, err := f.source.ReadAll(ctx, entity)
	if err != nil {
		f.logger.Error("Failed to read backing store",
			zap.String("store", entity.StoreName()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read %s store: %w", entity.StoreName(), err)
	}

	records := make([]report.Record, 0)
	for i, row := range rows {
		v, ok := row.Get(column)
		if !ok {
			return nil, &report.RowError{
				Store:  entity.StoreName(),
				Row:    i + 1,
				Column: string(column),
				Err:    report.ErrMissingColumn,
			}
		}
		if !strings.Contains(v, value) {
			continue
		}

		record, err := binding.construct(row)
		if err != nil {
			return nil, withRowContext(err, entity, i+1)
		}
		records = append(records, record)
	}

	f.logger.Debug("Filtered backing store",
		zap.String("store", entity.StoreName()),
		zap.String("column", string(column)),
		zap.String("value", value),
		zap.Int("scanned", len(rows)),
		zap.Int("matched", len(records)),
	)

	return records, nil
}
