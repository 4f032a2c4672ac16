// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package workspace locates and validates the course project layout.
//
// A project is a PyCharm-managed directory: it carries a `.idea/` marker
// folder and a `tk/` toolkit directory holding `config.toml`. The managed
// virtual environment lives in `.venv/` next to them.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Well-known names inside a project.
const (
	MarkerDir   = ".idea"
	ToolkitDir  = "tk"
	ConfigName  = "config.toml"
	VenvDir     = ".venv"
	ScratchDir  = "scratch"
	BackupDir   = ".backups"
	StateDBName = "toolkit.db"
)

// ErrNotFound is returned when no project can be located.
var ErrNotFound = fmt.Errorf("no project found (missing %s marker)", MarkerDir)

// Paths resolves every location the toolkit cares about relative to a
// project root.
type Paths struct {
	Root string
}

// New returns Paths rooted at the given project directory.
func New(root string) Paths {
	return Paths{Root: root}
}

// Find walks upward from start looking for a directory with a `.idea/`
// marker and returns its Paths. It returns ErrNotFound when the walk
// reaches the filesystem root without a hit.
func Find(start string) (Paths, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Paths{}, err
	}
	for {
		if HasMarker(dir) {
			return New(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Paths{}, ErrNotFound
		}
		dir = parent
	}
}

// HasMarker reports whether dir contains a `.idea/` sub-folder.
func HasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerDir))
	return err == nil && info.IsDir()
}

// Toolkit returns the toolkit directory inside the project.
func (p Paths) Toolkit() string {
	return filepath.Join(p.Root, ToolkitDir)
}

// ConfigFile returns the path of the project configuration file.
func (p Paths) ConfigFile() string {
	return filepath.Join(p.Toolkit(), ConfigName)
}

// Venv returns the virtual environment directory.
func (p Paths) Venv() string {
	return filepath.Join(p.Root, VenvDir)
}

// VenvBin returns the executables directory inside the venv, which differs
// between POSIX and Windows layouts.
func (p Paths) VenvBin() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(p.Venv(), "Scripts")
	}
	return filepath.Join(p.Venv(), "bin")
}

// VenvPython returns the interpreter inside the venv.
func (p Paths) VenvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(p.VenvBin(), "python.exe")
	}
	return filepath.Join(p.VenvBin(), "python")
}

// VenvPip returns the pip executable inside the venv.
func (p Paths) VenvPip() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(p.VenvBin(), "pip.exe")
	}
	return filepath.Join(p.VenvBin(), "pip")
}

// Scratch returns the managed scratch directory.
func (p Paths) Scratch() string {
	return filepath.Join(p.Root, ScratchDir)
}

// Backups returns the default backup directory.
func (p Paths) Backups() string {
	return filepath.Join(p.Root, BackupDir)
}

// StateDB returns the default sqlite DSN for the project state store.
func (p Paths) StateDB() string {
	return filepath.Join(p.Toolkit(), StateDBName)
}

// TreeNotes carries per-entry annotations for DirTree.
type TreeNotes struct {
	Marker  string
	Toolkit string
	Config  string
}

// DirTree renders the expected project layout as an ASCII diagram, used in
// error messages so students can see at a glance what is off.
func DirTree(notes TreeNotes) string {
	var b strings.Builder
	b.WriteString("<PYCHARM_PROJECT_FOLDER>/\n")
	fmt.Fprintf(&b, "|__ %s/%s\n", MarkerDir, pad(notes.Marker))
	fmt.Fprintf(&b, "|__ %s/%s\n", ToolkitDir, pad(notes.Toolkit))
	fmt.Fprintf(&b, "|   |__ %s%s\n", ConfigName, pad(notes.Config))
	fmt.Fprintf(&b, "|__ %s/\n", VenvDir)
	return b.String()
}

func pad(note string) string {
	if note == "" {
		return ""
	}
	return "   " + note
}

// CheckLayout verifies the location of files and folders. It returns
// informative errors embedding the expected layout when `.idea/` or the
// config file is missing.
func (p Paths) CheckLayout() error {
	if !HasMarker(p.Root) {
		return fmt.Errorf("the toolkit should live inside a PyCharm project folder:\n\n%s",
			DirTree(TreeNotes{Marker: "<- Missing marker (open the folder in PyCharm)"}))
	}
	if info, err := os.Stat(p.Toolkit()); err != nil || !info.IsDir() {
		return fmt.Errorf("could not find the %s/ toolkit directory:\n\n%s",
			ToolkitDir, DirTree(TreeNotes{Toolkit: "<- Missing directory"}))
	}
	if _, err := os.Stat(p.ConfigFile()); err != nil {
		return fmt.Errorf("could not find '%s':\n\n%s",
			ConfigName, DirTree(TreeNotes{Config: "<- Missing file"}))
	}
	return nil
}

// HasVenv reports whether the venv directory exists.
func (p Paths) HasVenv() bool {
	info, err := os.Stat(p.Venv())
	return err == nil && info.IsDir()
}

// HasVenvInterpreter reports whether the venv holds a usable interpreter.
func (p Paths) HasVenvInterpreter() bool {
	info, err := os.Stat(p.VenvPython())
	return err == nil && !info.IsDir()
}

// Rel returns path relative to the project root with forward slashes, the
// canonical form used by the file manifest.
func (p Paths) Rel(path string) (string, error) {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
