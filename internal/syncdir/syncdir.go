// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package syncdir pulls course material from a shared directory (typically
// a Dropbox folder) into the project. By default only files that do not
// exist locally are copied; change detection is content-based via sha256.
// The file manifest doubles as a quick check: a local file whose recorded
// size and mtime are unchanged is not re-hashed on later runs. Local files
// are never deleted.
package syncdir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/logging"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

// Action says what Apply will do with an item.
type Action int

const (
	// ActionCopy copies a file that does not exist locally.
	ActionCopy Action = iota
	// ActionUpdate overwrites a local file whose upstream content changed.
	ActionUpdate
)

// String returns the verb used in plan listings.
func (a Action) String() string {
	if a == ActionUpdate {
		return "update"
	}
	return "copy"
}

// Item is a single planned file operation.
type Item struct {
	Rel    string
	Source string
	Dest   string
	Action Action
	Size   int64
	SHA256 string
}

// Plan is the result of comparing the source directory with the project.
type Plan struct {
	Items        []Item
	Unchanged    int
	SkippedLocal int
	// StaleManifest lists manifest paths whose local file is gone and that
	// the source no longer offers; Apply drops their rows.
	StaleManifest []string
}

// skippedDirs are never pulled from the source directory.
var skippedDirs = map[string]bool{
	".git":               true,
	".dropbox.cache":     true,
	workspace.VenvDir:    true,
	workspace.MarkerDir:  true,
	workspace.BackupDir:  true,
	workspace.ScratchDir: true,
}

// BuildPlan walks srcDir and compares each regular file against the project.
// With includeChanged false, only missing files are planned (copy-new
// semantics); with it true, changed files are planned as updates too. A
// non-nil store provides the manifest used to skip re-hashing unchanged
// local files.
func BuildPlan(ctx context.Context, srcDir string, p workspace.Paths, store db.Store, includeChanged bool) (*Plan, error) {
	info, err := os.Stat(srcDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source directory not found: %s", srcDir)
	}

	plan := &Plan{}
	seen := make(map[string]bool)
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, rerr := filepath.Rel(srcDir, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		// Symlinks could point outside the source dir; never follow them.
		if !d.Type().IsRegular() {
			logging.Debugf("sync: skipping non-regular file %s", rel)
			return nil
		}

		dest := filepath.Join(p.Root, filepath.FromSlash(rel))
		seen[rel] = true
		sum, size, herr := HashFile(path)
		if herr != nil {
			return herr
		}

		destInfo, serr := os.Stat(dest)
		if serr != nil {
			if os.IsNotExist(serr) {
				plan.Items = append(plan.Items, Item{Rel: rel, Source: path, Dest: dest, Action: ActionCopy, Size: size, SHA256: sum})
				return nil
			}
			return serr
		}

		if !includeChanged {
			plan.SkippedLocal++
			return nil
		}
		destSum, derr := destHash(ctx, store, rel, dest, destInfo)
		if derr != nil {
			return derr
		}
		if destSum == sum {
			plan.Unchanged++
			return nil
		}
		plan.Items = append(plan.Items, Item{Rel: rel, Source: path, Dest: dest, Action: ActionUpdate, Size: size, SHA256: sum})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if store != nil {
		states, err := store.GetAllFileStates(ctx)
		if err != nil {
			return nil, err
		}
		for _, st := range states {
			if seen[st.Path] {
				continue
			}
			if _, err := os.Stat(filepath.Join(p.Root, filepath.FromSlash(st.Path))); os.IsNotExist(err) {
				plan.StaleManifest = append(plan.StaleManifest, st.Path)
			}
		}
	}
	return plan, nil
}

// destHash returns the content hash of the local copy of rel. When the
// manifest entry's size and mtime (compared at second resolution, which is
// what survives the store round trip) match the file on disk, the recorded
// hash is trusted and the file is not re-read. Any mismatch falls back to
// hashing.
func destHash(ctx context.Context, store db.Store, rel, dest string, info os.FileInfo) (string, error) {
	if store != nil {
		st, err := store.GetFileState(ctx, rel)
		if err == nil && st.Size == info.Size() && st.ModTime.Unix() == info.ModTime().Unix() {
			return st.SHA256, nil
		}
	}
	sum, _, err := HashFile(dest)
	return sum, err
}

// Apply executes the plan, copying files into the project and recording the
// result in the file manifest. It returns the number of files written.
func Apply(ctx context.Context, store db.Store, plan *Plan) (int, error) {
	written := 0
	for _, item := range plan.Items {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		if err := copyFile(item.Source, item.Dest); err != nil {
			return written, fmt.Errorf("could not %s %s: %w", item.Action, item.Rel, err)
		}
		written++
		logging.Infof("%s %s", item.Action, item.Rel)

		if store == nil {
			continue
		}
		info, err := os.Stat(item.Dest)
		if err != nil {
			return written, err
		}
		if err := store.UpsertFileState(ctx, item.Rel, item.SHA256, item.Size, info.ModTime()); err != nil {
			return written, err
		}
	}

	if store != nil {
		for _, rel := range plan.StaleManifest {
			if err := store.DeleteFileState(ctx, rel); err != nil {
				return written, err
			}
			logging.Debugf("manifest: dropped stale entry %s", rel)
		}
	}
	return written, nil
}

// Describe renders the plan for a dry run.
func Describe(plan *Plan) string {
	if len(plan.Items) == 0 {
		return "nothing to do"
	}
	var b strings.Builder
	for _, item := range plan.Items {
		fmt.Fprintf(&b, "%-6s %s (%d bytes)\n", item.Action, item.Rel, item.Size)
	}
	return strings.TrimRight(b.String(), "\n")
}

// HashFile returns the sha256 hex digest and size of a file.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// copyFile copies src to dest through a temp file in the destination
// directory, creating parent directories as needed.
func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tk-sync-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
