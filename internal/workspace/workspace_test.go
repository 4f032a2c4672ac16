// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mkProject builds a minimal valid project under a temp dir.
func mkProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{MarkerDir, ToolkitDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	cfg := filepath.Join(root, ToolkitDir, ConfigName)
	if err := os.WriteFile(cfg, []byte("language = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return root
}

func TestFind_FromNestedDir(t *testing.T) {
	root := mkProject(t)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	p, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	// Resolve symlinks since t.TempDir may live under one on macOS.
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(p.Root)
	if gotRoot != wantRoot {
		t.Fatalf("Find root = %s, want %s", gotRoot, wantRoot)
	}
}

func TestFind_NoMarker(t *testing.T) {
	if _, err := Find(t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckLayout_Valid(t *testing.T) {
	p := New(mkProject(t))
	if err := p.CheckLayout(); err != nil {
		t.Fatalf("CheckLayout on valid project: %v", err)
	}
}

func TestCheckLayout_MissingMarker(t *testing.T) {
	root := t.TempDir()
	err := New(root).CheckLayout()
	if err == nil {
		t.Fatal("expected error for missing marker")
	}
	if !strings.Contains(err.Error(), "<PYCHARM_PROJECT_FOLDER>/") {
		t.Fatalf("error should embed the layout diagram, got: %v", err)
	}
}

func TestCheckLayout_MissingConfig(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{MarkerDir, ToolkitDir} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	err := New(root).CheckLayout()
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !strings.Contains(err.Error(), ConfigName) || !strings.Contains(err.Error(), "<- Missing file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDirTree_Notes(t *testing.T) {
	out := DirTree(TreeNotes{Config: "<- Missing file"})
	if !strings.Contains(out, ConfigName+"   <- Missing file") {
		t.Fatalf("unexpected tree:\n%s", out)
	}
	if !strings.HasPrefix(out, "<PYCHARM_PROJECT_FOLDER>/") {
		t.Fatalf("unexpected tree head:\n%s", out)
	}
}

func TestRel(t *testing.T) {
	p := New(mkProject(t))
	got, err := p.Rel(filepath.Join(p.Root, "data", "prices.csv"))
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if got != "data/prices.csv" {
		t.Fatalf("Rel = %q", got)
	}
}

func TestVenvPaths(t *testing.T) {
	p := New("/proj")
	if !strings.HasPrefix(p.VenvPython(), p.Venv()) {
		t.Fatalf("interpreter %s not inside venv %s", p.VenvPython(), p.Venv())
	}
	if !strings.HasPrefix(p.VenvPip(), p.VenvBin()) {
		t.Fatalf("pip %s not inside venv bin %s", p.VenvPip(), p.VenvBin())
	}
}
