// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	cfg "github.com/brenoschmidt/toolkit/internal/config"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

func mkProject(t *testing.T) workspace.Paths {
	t.Helper()
	root := t.TempDir()
	p := workspace.New(root)
	if err := os.MkdirAll(p.Toolkit(), 0o755); err != nil {
		t.Fatalf("mkdir toolkit: %v", err)
	}
	return p
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	p := mkProject(t)
	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, p, cfg.Defaults(p), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Database.Type != "sqlite" {
		t.Fatalf("default database.type = %q", got.Database.Type)
	}
	if got.Backup.Keep != 10 {
		t.Fatalf("default backup.keep = %d", got.Backup.Keep)
	}
	if !got.Paths.Validate {
		t.Fatal("default paths.validate should be true")
	}
}

func TestLoadConfig_ReadsProjectFile(t *testing.T) {
	p := mkProject(t)
	tomlBody := "language = \"de\"\n\n[github.core]\nuser = \"someone\"\nrepo = \"tk_core_fork\"\n\n[backup]\nkeep = 3\n"
	if err := os.WriteFile(p.ConfigFile(), []byte(tomlBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, p, cfg.Defaults(p), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("language = %q, want de", got.Language)
	}
	if got.GitHub.Core.User != "someone" || got.GitHub.Core.Repo != "tk_core_fork" {
		t.Fatalf("github.core = %+v", got.GitHub.Core)
	}
	if got.Backup.Keep != 3 {
		t.Fatalf("backup.keep = %d, want 3", got.Backup.Keep)
	}
	// Unset keys fall back to defaults.
	if got.Database.Type != "sqlite" {
		t.Fatalf("database.type = %q, want sqlite default", got.Database.Type)
	}
}

func TestLoadConfig_ExplicitFileWins(t *testing.T) {
	p := mkProject(t)
	if err := os.WriteFile(p.ConfigFile(), []byte("language = \"de\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	explicit := filepath.Join(t.TempDir(), "override.toml")
	if err := os.WriteFile(explicit, []byte("language = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write explicit config: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, p, cfg.Defaults(p), &explicit)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Language != "en" {
		t.Fatalf("language = %q, explicit file should win", got.Language)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	p := mkProject(t)
	if err := os.WriteFile(p.ConfigFile(), []byte("language = [broken\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, p, cfg.Defaults(p), nil); err == nil {
		t.Fatal("expected parse error for malformed config")
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	p := workspace.New(t.TempDir()) // no toolkit dir yet; WriteConfigFile creates it

	c, err := cfg.DefaultConfig(p)
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	c.Language = "de"
	if err := cfg.WriteConfigFile(&c, p); err != nil {
		t.Fatalf("WriteConfigFile: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, p, cfg.Defaults(p), nil)
	if err != nil {
		t.Fatalf("LoadConfig after write: %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("round-trip language = %q", got.Language)
	}
	if got.GitHub.Core.User != "brenoschmidt" {
		t.Fatalf("round-trip github.core.user = %q", got.GitHub.Core.User)
	}
}
