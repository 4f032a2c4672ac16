// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore opens a fresh sqlite store in a temp dir.
func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "toolkit.db")
	s, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewStoreFromDSN_UnsupportedType(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "whatever"); err == nil {
		t.Fatal("expected error for unsupported db type")
	}
}

func TestFileStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mod := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if err := s.UpsertFileState(ctx, "data/prices.csv", "abc123", 42, mod); err != nil {
		t.Fatalf("UpsertFileState: %v", err)
	}

	got, err := s.GetFileState(ctx, "data/prices.csv")
	if err != nil {
		t.Fatalf("GetFileState: %v", err)
	}
	if got.SHA256 != "abc123" || got.Size != 42 {
		t.Fatalf("unexpected state: %+v", got)
	}

	// Upsert with new content replaces the row.
	if err := s.UpsertFileState(ctx, "data/prices.csv", "def456", 64, mod.Add(time.Hour)); err != nil {
		t.Fatalf("UpsertFileState (update): %v", err)
	}
	got, err = s.GetFileState(ctx, "data/prices.csv")
	if err != nil {
		t.Fatalf("GetFileState after update: %v", err)
	}
	if got.SHA256 != "def456" || got.Size != 64 {
		t.Fatalf("upsert did not replace: %+v", got)
	}

	all, err := s.GetAllFileStates(ctx)
	if err != nil {
		t.Fatalf("GetAllFileStates: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 state, got %d", len(all))
	}

	if err := s.DeleteFileState(ctx, "data/prices.csv"); err != nil {
		t.Fatalf("DeleteFileState: %v", err)
	}
	if _, err := s.GetFileState(ctx, "data/prices.csv"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetFileState_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetFileState(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBackupLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	id, err := s.AddBackup(ctx, "/backups/tk-backup-1.tar.zst", "aa11", 1024, created)
	if err != nil {
		t.Fatalf("AddBackup: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero backup id")
	}

	// Duplicate archive path maps to ErrDuplicate.
	if _, err := s.AddBackup(ctx, "/backups/tk-backup-1.tar.zst", "bb22", 1, created); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if _, err := s.AddBackup(ctx, "/backups/tk-backup-2.tar.zst", "cc33", 2048, created.Add(time.Hour)); err != nil {
		t.Fatalf("AddBackup second: %v", err)
	}

	all, err := s.GetAllBackups(ctx)
	if err != nil {
		t.Fatalf("GetAllBackups: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(all))
	}
	if all[0].Path != "/backups/tk-backup-2.tar.zst" {
		t.Fatalf("expected newest first, got %s", all[0].Path)
	}

	b, err := s.GetBackupByPath(ctx, "/backups/tk-backup-1.tar.zst")
	if err != nil {
		t.Fatalf("GetBackupByPath: %v", err)
	}
	if b.Pushed() {
		t.Fatal("new backup should not be marked pushed")
	}

	if err := s.MarkBackupPushed(ctx, b.ID, created.Add(2*time.Hour)); err != nil {
		t.Fatalf("MarkBackupPushed: %v", err)
	}
	b, err = s.GetBackupByPath(ctx, "/backups/tk-backup-1.tar.zst")
	if err != nil {
		t.Fatalf("GetBackupByPath after push: %v", err)
	}
	if !b.Pushed() {
		t.Fatal("expected backup to be marked pushed")
	}

	if err := s.DeleteBackup(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBackup: %v", err)
	}
	if err := s.DeleteBackup(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestMarkBackupPushed_NotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.MarkBackupPushed(context.Background(), 999, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuditLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.LogAction("SETUP", "workspace bootstrapped"); err != nil {
		t.Fatalf("LogAction: %v", err)
	}
	if err := s.LogAction("BACKUP", "archive: a.tar.zst"); err != nil {
		t.Fatalf("LogAction second: %v", err)
	}

	entries, err := s.GetAllAuditLogEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllAuditLogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != "BACKUP" {
		t.Fatalf("expected newest first, got %s", entries[0].Action)
	}
}

func TestPackageLogAction_NilStore(t *testing.T) {
	restore := SetForTest(nil)
	defer restore()
	if err := LogAction("NOOP", ""); err != nil {
		t.Fatalf("LogAction with nil store should be a no-op, got %v", err)
	}
}

func TestInitDB_SetsPackageStore(t *testing.T) {
	restore := SetForTest(nil)
	defer restore()

	dsn := filepath.Join(t.TempDir(), "toolkit.db")
	if err := InitDB("sqlite", dsn); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if !IsInitialized() {
		t.Fatal("expected store to be initialized")
	}
	_ = Get().Close()
}
