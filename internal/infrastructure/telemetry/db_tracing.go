package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingOption configures RegisterDBTracing
type DBTracingOption func(*dbTracingOptions)

type dbTracingOptions struct {
	provider       trace.TracerProvider
	queryVariables bool
}

// WithDBTracerProvider sets the provider statement spans are created on.
// The global provider is used by default.
func WithDBTracerProvider(provider trace.TracerProvider) DBTracingOption {
	return func(o *dbTracingOptions) {
		o.provider = provider
	}
}

// WithQueryVariables keeps bound values in the recorded statements
func WithQueryVariables() DBTracingOption {
	return func(o *dbTracingOptions) {
		o.queryVariables = true
	}
}

// RegisterDBTracing installs the otelgorm plugin on db so every statement the
// SQL store runs becomes a child span of the report build
func RegisterDBTracing(db *gorm.DB, dbName string, logger *zap.Logger, opts ...DBTracingOption) error {
	var o dbTracingOptions
	for _, opt := range opts {
		opt(&o)
	}

	pluginOpts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !o.queryVariables {
		pluginOpts = append(pluginOpts, otelgorm.WithoutQueryVariables())
	}
	if o.provider != nil {
		pluginOpts = append(pluginOpts, otelgorm.WithTracerProvider(o.provider))
	}

	if err := db.Use(otelgorm.NewPlugin(pluginOpts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", dbName),
		zap.Bool("query_variables", o.queryVariables),
	)
	return nil
}
