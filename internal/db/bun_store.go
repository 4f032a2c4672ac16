// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/brenoschmidt/toolkit/internal/model"
)

// fileStateModel maps the `file_states` table for Bun queries.
type fileStateModel struct {
	bun.BaseModel `bun:"table:file_states"`
	Path          string    `bun:"path,pk"`
	SHA256        string    `bun:"sha256,notnull"`
	Size          int64     `bun:"size,notnull"`
	ModTime       time.Time `bun:"mod_time,notnull"`
}

// backupModel maps the `backups` table for Bun queries.
type backupModel struct {
	bun.BaseModel `bun:"table:backups"`
	ID            int64      `bun:"id,pk,autoincrement"`
	Path          string     `bun:"path,notnull,unique"`
	SHA256        string     `bun:"sha256,notnull"`
	Size          int64      `bun:"size,notnull"`
	CreatedAt     time.Time  `bun:"created_at,notnull"`
	PushedAt      *time.Time `bun:"pushed_at"`
}

// auditLogModel maps the `audit_log` table for Bun queries.
type auditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp,notnull"`
	Action        string `bun:"action,notnull"`
	Details       string `bun:"details"`
}

// BunStore implements Store on top of a *bun.DB and works across the
// supported SQL backends.
type BunStore struct {
	db *bun.DB
}

// Close releases the underlying database connection.
func (s *BunStore) Close() error {
	return s.db.Close()
}

// UpsertFileState inserts or replaces the manifest entry for a path.
func (s *BunStore) UpsertFileState(ctx context.Context, path, sha256 string, size int64, modTime time.Time) error {
	m := &fileStateModel{Path: path, SHA256: sha256, Size: size, ModTime: modTime}
	q := s.db.NewInsert().Model(m)
	// MySQL has no ON CONFLICT clause.
	if s.db.Dialect().Name() == dialect.MySQL {
		q = q.On("DUPLICATE KEY UPDATE").
			Set("sha256 = VALUES(sha256)").
			Set("size = VALUES(size)").
			Set("mod_time = VALUES(mod_time)")
	} else {
		q = q.On("CONFLICT (path) DO UPDATE").
			Set("sha256 = EXCLUDED.sha256").
			Set("size = EXCLUDED.size").
			Set("mod_time = EXCLUDED.mod_time")
	}
	_, err := q.Exec(ctx)
	return MapDBError(err)
}

// GetFileState returns the manifest entry for a path, or ErrNotFound.
func (s *BunStore) GetFileState(ctx context.Context, path string) (*model.FileState, error) {
	var m fileStateModel
	err := s.db.NewSelect().Model(&m).Where("path = ?", path).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	fs := fileStateToModel(m)
	return &fs, nil
}

// GetAllFileStates returns every manifest entry ordered by path.
func (s *BunStore) GetAllFileStates(ctx context.Context) ([]model.FileState, error) {
	var ms []fileStateModel
	if err := s.db.NewSelect().Model(&ms).Order("path ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.FileState, 0, len(ms))
	for _, m := range ms {
		out = append(out, fileStateToModel(m))
	}
	return out, nil
}

// DeleteFileState removes the manifest entry for a path. Deleting a path
// that has no entry is not an error.
func (s *BunStore) DeleteFileState(ctx context.Context, path string) error {
	_, err := s.db.NewDelete().Model((*fileStateModel)(nil)).Where("path = ?", path).Exec(ctx)
	return err
}

// AddBackup records a new backup archive and returns its ID.
func (s *BunStore) AddBackup(ctx context.Context, path, sha256 string, size int64, createdAt time.Time) (int64, error) {
	m := &backupModel{Path: path, SHA256: sha256, Size: size, CreatedAt: createdAt}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return m.ID, nil
}

// GetAllBackups returns all recorded backups, newest first.
func (s *BunStore) GetAllBackups(ctx context.Context) ([]model.Backup, error) {
	var ms []backupModel
	if err := s.db.NewSelect().Model(&ms).Order("created_at DESC").Order("id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Backup, 0, len(ms))
	for _, m := range ms {
		out = append(out, backupToModel(m))
	}
	return out, nil
}

// GetBackupByPath returns the backup recorded for an archive path, or ErrNotFound.
func (s *BunStore) GetBackupByPath(ctx context.Context, path string) (*model.Backup, error) {
	var m backupModel
	err := s.db.NewSelect().Model(&m).Where("path = ?", path).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b := backupToModel(m)
	return &b, nil
}

// MarkBackupPushed records the remote upload time for a backup.
func (s *BunStore) MarkBackupPushed(ctx context.Context, id int64, pushedAt time.Time) error {
	res, err := s.db.NewUpdate().
		Model((*backupModel)(nil)).
		Set("pushed_at = ?", pushedAt).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBackup removes a backup record by ID.
func (s *BunStore) DeleteBackup(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*backupModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// LogAction appends an entry to the audit log.
func (s *BunStore) LogAction(action, details string) error {
	m := &auditLogModel{
		Timestamp: time.Now().Format(time.RFC3339),
		Action:    action,
		Details:   details,
	}
	_, err := s.db.NewInsert().Model(m).Exec(context.Background())
	return err
}

// GetAllAuditLogEntries returns the audit log, newest first.
func (s *BunStore) GetAllAuditLogEntries(ctx context.Context) ([]model.AuditLogEntry, error) {
	var ms []auditLogModel
	if err := s.db.NewSelect().Model(&ms).Order("id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(ms))
	for _, m := range ms {
		out = append(out, model.AuditLogEntry{
			ID:        m.ID,
			Timestamp: m.Timestamp,
			Action:    m.Action,
			Details:   m.Details,
		})
	}
	return out, nil
}

func fileStateToModel(m fileStateModel) model.FileState {
	return model.FileState{
		Path:    m.Path,
		SHA256:  m.SHA256,
		Size:    m.Size,
		ModTime: m.ModTime,
	}
}

func backupToModel(m backupModel) model.Backup {
	return model.Backup{
		ID:        m.ID,
		Path:      m.Path,
		SHA256:    m.SHA256,
		Size:      m.Size,
		CreatedAt: m.CreatedAt,
		PushedAt:  m.PushedAt,
	}
}
