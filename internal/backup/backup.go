// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup creates and restores zstd-compressed tar snapshots of the
// project tree.
package backup

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/logging"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

// Prefix is the file name prefix of backup archives.
const Prefix = "tk-backup-"

// defaultExcludes are directory names never included in a snapshot.
var defaultExcludes = []string{
	workspace.VenvDir,
	workspace.MarkerDir,
	workspace.BackupDir,
	".git",
}

// Archive describes a snapshot written to disk.
type Archive struct {
	Path      string
	SHA256    string
	Size      int64
	CreatedAt time.Time
}

// Options controls snapshot creation.
type Options struct {
	// Dir is the destination directory for archives.
	Dir string
	// Excludes extends the default directory exclusions.
	Excludes []string
	// Now stamps the archive name; zero means time.Now.
	Now time.Time
}

// Create snapshots the project into <dir>/tk-backup-<stamp>.tar.zst. The
// archive is written to a temp file and renamed into place so a crash never
// leaves a half-written backup behind.
func Create(ctx context.Context, p workspace.Paths, opts Options) (*Archive, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	dir := opts.Dir
	if dir == "" {
		dir = p.Backups()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create backup directory %s: %w", dir, err)
	}

	name := Prefix + now.Format("20060102-150405") + ".tar.zst"
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+Prefix+"*")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	zw, err := zstd.NewWriter(io.MultiWriter(tmp, hash))
	if err != nil {
		return nil, fmt.Errorf("could not create zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	skip := make(map[string]bool)
	for _, e := range append(append([]string{}, defaultExcludes...), opts.Excludes...) {
		skip[e] = true
	}
	// Never archive the destination directory itself.
	if rel, err := p.Rel(dir); err == nil && !strings.HasPrefix(rel, "..") {
		skip[rel] = true
	}

	walkErr := filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, rerr := p.Rel(path)
		if rerr != nil {
			return rerr
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if skip[rel] || skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			logging.Debugf("backup: skipping non-regular file %s", rel)
			return nil
		}
		info, ierr := d.Info()
		if ierr != nil {
			return ierr
		}
		hdr, herr := tar.FileInfoHeader(info, "")
		if herr != nil {
			return herr
		}
		hdr.Name = rel
		if werr := tw.WriteHeader(hdr); werr != nil {
			return werr
		}
		f, ferr := os.Open(path)
		if ferr != nil {
			return ferr
		}
		_, cerr := io.Copy(tw, f)
		_ = f.Close()
		return cerr
	})
	if walkErr != nil {
		return nil, fmt.Errorf("backup walk failed: %w", walkErr)
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, err
	}
	return &Archive{
		Path:      dest,
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
		Size:      info.Size(),
		CreatedAt: now,
	}, nil
}

// Prune keeps the newest `keep` recorded backups and removes the rest, both
// the archive files and their store rows. keep <= 0 disables pruning.
func Prune(ctx context.Context, store db.Store, keep int) error {
	if keep <= 0 {
		return nil
	}
	backups, err := store.GetAllBackups(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			logging.Warnf("prune: could not remove %s: %v", b.Path, err)
			continue
		}
		if err := store.DeleteBackup(ctx, b.ID); err != nil {
			return err
		}
		logging.Debugf("prune: removed %s", b.Path)
	}
	return nil
}
