// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for the toolkit.
// It abstracts the underlying database (SQLite, MySQL, PostgreSQL) behind a
// consistent interface, allowing the rest of the application to interact with
// the database in a uniform way.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// InitDB initializes the database connection based on the provided type and
// DSN, creates the schema if needed, and sets the package-level store.
func InitDB(dbType, dsn string) error {
	s, err := NewStoreFromDSN(dbType, dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	store = s
	return nil
}

// NewStoreFromDSN opens a sql.DB for the given DSN, ensures the schema, and
// returns a Store backed by a long-lived *bun.DB. This hides *sql.DB usage
// from higher-level callers.
func NewStoreFromDSN(dbType, dsn string) (Store, error) {
	driverName := dbType
	if dbType == "postgres" {
		driverName = "pgx"
	}

	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var bdb *bun.DB
	switch dbType {
	case "sqlite":
		// A single connection keeps in-memory databases alive and sidesteps
		// SQLITE_BUSY on concurrent writers.
		sqlDB.SetMaxOpenConns(1)
		bdb = bun.NewDB(sqlDB, sqlitedialect.New())
	case "mysql":
		bdb = bun.NewDB(sqlDB, mysqldialect.New())
	case "postgres":
		bdb = bun.NewDB(sqlDB, pgdialect.New())
	default:
		_ = sqlDB.Close()
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	if err := createSchema(bdb); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &BunStore{db: bdb}, nil
}

// createSchema creates the toolkit tables if they do not exist yet.
func createSchema(bdb *bun.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models := []interface{}{
		(*fileStateModel)(nil),
		(*backupModel)(nil),
		(*auditLogModel)(nil),
	}
	for _, m := range models {
		if _, err := bdb.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
