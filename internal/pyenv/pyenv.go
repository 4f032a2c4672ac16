// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package pyenv bootstraps the project's Python virtual environment and
// installs the companion course package into it.
package pyenv

import (
	"context"
	"fmt"
	"os"

	"github.com/brenoschmidt/toolkit/internal/logging"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

// Setup drives virtual environment creation and package installation for a
// project.
type Setup struct {
	Paths workspace.Paths
	// Interpreter is the Python used to create the venv. Empty means
	// auto-detect from PATH.
	Interpreter string
	// CoreUser and CoreRepo identify the GitHub repository the companion
	// package is installed from.
	CoreUser string
	CoreRepo string

	Runner Runner
}

// interpreterCandidates are tried in order when no interpreter is configured.
var interpreterCandidates = []string{"python3", "python"}

// FindInterpreter resolves the Python interpreter to use, preferring the
// configured override.
func (s *Setup) FindInterpreter() (string, error) {
	if s.Interpreter != "" {
		if _, err := os.Stat(s.Interpreter); err != nil {
			return "", fmt.Errorf("configured interpreter not found: %s", s.Interpreter)
		}
		return s.Interpreter, nil
	}
	for _, c := range interpreterCandidates {
		if path, err := LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found on PATH (tried %v)", interpreterCandidates)
}

// EnsureVenv creates the .venv/ directory when missing. A venv directory
// that exists but holds no interpreter means the IDE has a stale view of
// the environment; surface the guidance from the original tooling.
func (s *Setup) EnsureVenv(ctx context.Context) error {
	p := s.Paths
	if p.HasVenvInterpreter() {
		logging.Infof("virtual environment is set up: %s", p.Venv())
		return nil
	}
	if p.HasVenv() {
		return fmt.Errorf("directory %s exists but holds no interpreter\n"+
			"Try restarting PyCharm\n"+
			"If the error persists, configure the PyCharm interpreter manually", workspace.VenvDir)
	}

	python, err := s.FindInterpreter()
	if err != nil {
		return err
	}
	if err := s.runner().Run(ctx, python, "-m", "venv", p.Venv()); err != nil {
		return err
	}
	logging.Infof("virtual env created at %s", p.Venv())
	return nil
}

// CoreURL constructs the GitHub URL the companion package is installed from.
func (s *Setup) CoreURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", s.CoreUser, s.CoreRepo)
}

// InstallCore installs the companion package into the virtual environment.
// If force is true, reinstallation is forced.
func (s *Setup) InstallCore(ctx context.Context, force bool) error {
	pip := s.Paths.VenvPip()
	if _, err := os.Stat(pip); err != nil {
		return fmt.Errorf("cannot find pip executable inside venv (%s)", pip)
	}
	if s.CoreUser == "" || s.CoreRepo == "" {
		return fmt.Errorf("github.core.user and github.core.repo must be configured")
	}

	args := []string{"install"}
	if force {
		args = append(args, "--force-reinstall")
	}
	args = append(args, "git+"+s.CoreURL())
	return s.runner().Run(ctx, pip, args...)
}

// Update forces a reinstall of the companion package.
func (s *Setup) Update(ctx context.Context) error {
	return s.InstallCore(ctx, true)
}

func (s *Setup) runner() Runner {
	if s.Runner != nil {
		return s.Runner
	}
	return &ExecRunner{Dir: s.Paths.Root}
}
