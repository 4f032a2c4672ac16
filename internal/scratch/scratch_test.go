// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package scratch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brenoschmidt/toolkit/internal/workspace"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Momentum backtest":     "momentum-backtest",
		"  CAPM / beta calc  ":  "capm-beta-calc",
		"week3":                 "week3",
		"!!!":                   "",
		"trailing punctuation!": "trailing-punctuation",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew_CreatesDatedEntry(t *testing.T) {
	p := workspace.New(t.TempDir())
	now := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)

	dir, err := New(p, "Momentum backtest", now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if filepath.Base(dir) != "20260402-momentum-backtest" {
		t.Fatalf("unexpected entry name: %s", dir)
	}
	body, err := os.ReadFile(filepath.Join(dir, "notes.md"))
	if err != nil {
		t.Fatalf("notes.md missing: %v", err)
	}
	if !strings.Contains(string(body), "Momentum backtest") {
		t.Fatalf("notes stub missing title: %q", body)
	}

	// Same name on the same day collides.
	if _, err := New(p, "Momentum backtest", now); err == nil {
		t.Fatal("expected collision error")
	}
}

func TestNew_EmptySlug(t *testing.T) {
	p := workspace.New(t.TempDir())
	if _, err := New(p, "!!!", time.Now()); err == nil {
		t.Fatal("expected error for unusable name")
	}
}

func TestList_EmptyAndSorted(t *testing.T) {
	p := workspace.New(t.TempDir())

	entries, err := List(p)
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	for _, day := range []int{3, 1, 2} {
		now := time.Date(2026, 4, day, 12, 0, 0, 0, time.UTC)
		if _, err := New(p, "exp", now); err != nil {
			t.Fatalf("New day %d: %v", day, err)
		}
	}
	entries, err = List(p)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "20260401-exp" || entries[2].Name != "20260403-exp" {
		t.Fatalf("entries not sorted oldest first: %v", entries)
	}
}

func TestClean_ArchivesStaleEntries(t *testing.T) {
	p := workspace.New(t.TempDir())
	now := time.Now()

	oldDir, err := New(p, "old", now)
	if err != nil {
		t.Fatalf("New old: %v", err)
	}
	// Age the entry on disk; Clean uses mtimes, not the name prefix.
	past := now.Add(-90 * 24 * time.Hour)
	if err := os.Chtimes(filepath.Join(oldDir, "notes.md"), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(oldDir, past, past); err != nil {
		t.Fatalf("chtimes dir: %v", err)
	}

	if _, err := New(p, "fresh", now); err != nil {
		t.Fatalf("New fresh: %v", err)
	}

	archiveDir := filepath.Join(p.Root, workspace.BackupDir)

	// Dry run reports but does not touch anything.
	cleaned, err := Clean(context.Background(), p, 30*24*time.Hour, archiveDir, true, now)
	if err != nil {
		t.Fatalf("Clean dry run: %v", err)
	}
	if len(cleaned) != 1 {
		t.Fatalf("dry run should flag 1 entry, got %d", len(cleaned))
	}
	if _, err := os.Stat(oldDir); err != nil {
		t.Fatal("dry run must not remove entries")
	}

	cleaned, err = Clean(context.Background(), p, 30*24*time.Hour, archiveDir, false, now)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", len(cleaned))
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Fatal("stale entry should be removed")
	}
	archive := filepath.Join(archiveDir, "scratch-"+cleaned[0].Name+".tar.zst")
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	// Fresh entry survives.
	entries, err := List(p)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name, "-fresh") {
		t.Fatalf("fresh entry should survive, got %v", entries)
	}
}
