// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package scratch manages the project's holding area for throwaway code.
// Entries are plain directories under scratch/; nothing in here is ever
// executed by the toolkit.
package scratch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/brenoschmidt/toolkit/internal/backup"
	"github.com/brenoschmidt/toolkit/internal/logging"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

// Entry describes one scratch directory.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// Age returns how long ago the entry was last touched.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.ModTime)
}

// noteStub seeds every new entry so students have a place for context.
const noteStub = "# %s\n\nCreated %s. Anything in this directory is throwaway.\n"

// New creates a dated scratch directory for name and returns its path.
// The name is slugified; an existing entry with the same resulting name is
// an error rather than a silent reuse.
func New(p workspace.Paths, name string, now time.Time) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("scratch name %q has no usable characters", name)
	}
	dir := filepath.Join(p.Scratch(), now.Format("20060102")+"-"+slug)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("scratch entry already exists: %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	note := fmt.Sprintf(noteStub, name, now.Format("2006-01-02"))
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte(note), 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

// List returns the scratch entries sorted by directory name, which sorts
// oldest first thanks to the date prefix. A missing scratch dir is an empty
// list, not an error.
func List(p workspace.Paths) ([]Entry, error) {
	dirents, err := os.ReadDir(p.Scratch())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Entry
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		path := filepath.Join(p.Scratch(), d.Name())
		info, err := d.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Name:    d.Name(),
			Path:    path,
			ModTime: latestModTime(path, info.ModTime()),
			Size:    dirSize(path),
		})
	}
	return out, nil
}

// Clean archives entries older than maxAge into archiveDir and removes
// them. With dryRun it only reports what would happen. It returns the
// entries that were (or would be) cleaned.
func Clean(ctx context.Context, p workspace.Paths, maxAge time.Duration, archiveDir string, dryRun bool, now time.Time) ([]Entry, error) {
	entries, err := List(p)
	if err != nil {
		return nil, err
	}
	var cleaned []Entry
	for _, e := range entries {
		if e.Age(now) < maxAge {
			continue
		}
		cleaned = append(cleaned, e)
		if dryRun {
			continue
		}
		dest := filepath.Join(archiveDir, "scratch-"+e.Name+".tar.zst")
		if err := backup.ArchiveDir(ctx, e.Path, dest); err != nil {
			return cleaned, fmt.Errorf("could not archive %s: %w", e.Name, err)
		}
		if err := os.RemoveAll(e.Path); err != nil {
			return cleaned, err
		}
		logging.Infof("archived %s to %s", e.Name, dest)
	}
	return cleaned, nil
}

// Slugify lowercases the name and replaces runs of non-alphanumerics with a
// single dash.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// latestModTime returns the newest mtime inside dir, falling back to the
// directory's own mtime. Age should reflect the last edit, not creation.
func latestModTime(dir string, fallback time.Time) time.Time {
	newest := fallback
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, ierr := d.Info(); ierr == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, ierr := d.Info(); ierr == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
