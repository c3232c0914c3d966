// Package models contains GORM persistence models for the report's record stores.
// One table per store, named after report.EntityType.StoreName. Columns use the
// store's column names so rows read back as report.Row without renaming.
//
// Every table carries an auto-increment seq column. It preserves load order,
// which the report depends on when it takes the first match of a lookup.
package models
