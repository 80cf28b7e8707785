// Package database manages the optional SQL connection used to persist
// reconciled company snapshots.
//
// Two drivers are supported through GORM: MySQL for deployments and SQLite
// for local runs and tests (Name is the file path, ":memory:" included).
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live table definition
// (SHOW COLUMNS on MySQL, PRAGMA table_info on SQLite) so callers can
// verify a migrated schema before writing to it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("persistence disabled", zap.Error(err))
//	}
package database
