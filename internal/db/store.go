// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/brenoschmidt/toolkit/internal/model"
)

// Store defines the interface for all database operations in the toolkit.
// This allows for multiple database backends to be implemented.
type Store interface {
	// File manifest methods
	UpsertFileState(ctx context.Context, path, sha256 string, size int64, modTime time.Time) error
	GetFileState(ctx context.Context, path string) (*model.FileState, error)
	GetAllFileStates(ctx context.Context) ([]model.FileState, error)
	DeleteFileState(ctx context.Context, path string) error

	// Backup methods
	AddBackup(ctx context.Context, path, sha256 string, size int64, createdAt time.Time) (int64, error)
	GetAllBackups(ctx context.Context) ([]model.Backup, error)
	GetBackupByPath(ctx context.Context, path string) (*model.Backup, error)
	MarkBackupPushed(ctx context.Context, id int64, pushedAt time.Time) error
	DeleteBackup(ctx context.Context, id int64) error

	// Audit log methods
	LogAction(action string, details string) error
	GetAllAuditLogEntries(ctx context.Context) ([]model.AuditLogEntry, error)

	Close() error
}

// store is the package-level store set by InitDB.
var store Store

// IsInitialized reports whether the package-level store has been set.
func IsInitialized() bool {
	return store != nil
}

// Get returns the package-level store. It is nil before InitDB succeeds.
func Get() Store {
	return store
}

// SetForTest replaces the package-level store and returns a restore func.
// Only for use in tests.
func SetForTest(s Store) func() {
	prev := store
	store = s
	return func() { store = prev }
}

// LogAction writes an audit row through the package-level store. Audit
// failures are swallowed by callers; a nil store is a no-op.
func LogAction(action, details string) error {
	if store == nil {
		return nil
	}
	return store.LogAction(action, details)
}
