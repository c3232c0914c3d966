// Package csvstore reads the report's backing stores from delimited files.
package csvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erp/salesreport/internal/domain/report"
	"go.uber.org/zap"
)

// Ensure FileSource implements report.RowSource
var _ report.RowSource = (*FileSource)(nil)

// FileExt is the extension of every store file
const FileExt = ".csv"

// FileSource reads each entity's rows from <dir>/<store name>.csv.
// Files are read on every call so that a replaced file is picked up.
type FileSource struct {
	dir     string
	options []ParserOption
	logger  *zap.Logger
}

// SourceOption is a functional option for FileSource configuration
type SourceOption func(*FileSource)

// WithParserOptions sets the options every store file is parsed with
func WithParserOptions(opts ...ParserOption) SourceOption {
	return func(s *FileSource) {
		s.options = append(s.options, opts...)
	}
}

// WithLogger sets the source logger
func WithLogger(logger *zap.Logger) SourceOption {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// NewFileSource creates a FileSource rooted at dir
func NewFileSource(dir string, opts ...SourceOption) *FileSource {
	s := &FileSource{
		dir:    dir,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file backing entity
func (s *FileSource) Path(entity report.EntityType) string {
	return filepath.Join(s.dir, entity.StoreName()+FileExt)
}

// ReadAll parses the whole store file of entity. A missing file fails with
// report.ErrStoreNotFound.
func (s *FileSource) ReadAll(ctx context.Context, entity report.EntityType) ([]report.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(entity)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", report.ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ParseRows(f, s.options...)
	if err != nil {
		if errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrMissingHeader) {
			s.logger.Warn("Store file has no rows", zap.String("path", path), zap.Error(err))
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s.logger.Debug("Store file read",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

// Check verifies that every store file exists
func (s *FileSource) Check(_ context.Context) error {
	for _, entity := range report.EntityTypes() {
		if _, err := os.Stat(s.Path(entity)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", report.ErrStoreNotFound, s.Path(entity))
			}
			return err
		}
	}
	return nil
}
