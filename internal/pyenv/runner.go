// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package pyenv

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/brenoschmidt/toolkit/internal/logging"
)

// Runner executes external commands. It is an interface so tests can swap
// in a recorder instead of spawning processes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming combined output into the
// debug log and surfacing non-zero exits as errors.
type ExecRunner struct {
	// Dir is the working directory for spawned commands. Empty means the
	// current directory.
	Dir string
}

// Run executes the command and wraps failures with the captured output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	logging.Debugf("run: %s %s", name, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		logging.Debugf("output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("command failed: %s %s: %w\n%s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// LookPath reports the first usable interpreter among the candidates. It is
// a variable so tests can stub the PATH lookup.
var LookPath = exec.LookPath
