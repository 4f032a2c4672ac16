// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model contains the core data structures shared across the toolkit.
package model

import (
	"fmt"
	"time"
)

// FileState is a manifest entry recording the last observed content of a
// file inside the project, keyed by its project-relative path.
type FileState struct {
	Path    string
	SHA256  string
	Size    int64
	ModTime time.Time
}

// Backup describes a recorded backup archive.
type Backup struct {
	ID        int64
	Path      string
	SHA256    string
	Size      int64
	CreatedAt time.Time
	PushedAt  *time.Time
}

// Pushed reports whether the archive has been uploaded to a remote.
func (b Backup) Pushed() bool {
	return b.PushedAt != nil
}

// String returns a short human-readable description of the backup.
func (b Backup) String() string {
	return fmt.Sprintf("%s (%s)", b.Path, b.CreatedAt.Format(time.RFC3339))
}

// AuditLogEntry represents a single entry in the action history.
type AuditLogEntry struct {
	ID        int64
	Timestamp string
	Action    string
	Details   string
}
