// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/brenoschmidt/toolkit/internal/config"
	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/i18n"
	"github.com/brenoschmidt/toolkit/internal/pyenv"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

// newSetup builds the environment bootstrapper from the loaded config.
func newSetup() *pyenv.Setup {
	return &pyenv.Setup{
		Paths:       project,
		Interpreter: appConfig.Python.Interpreter,
		CoreUser:    appConfig.GitHub.Core.User,
		CoreRepo:    appConfig.GitHub.Core.Repo,
	}
}

// setupCmd bootstraps the workspace: config file, venv, companion package.
var setupCmd = &cobra.Command{
	Use:     "setup",
	Short:   "Bootstrap the workspace (config, virtual environment, course package)",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		// Write the default config on first run so students have a file
		// to edit.
		if _, err := os.Stat(project.ConfigFile()); os.IsNotExist(err) {
			if err := config.WriteConfigFile(&appConfig, project); err != nil {
				log.Fatalf("could not write default config: %v", err)
			}
			log.Infof("wrote default config to %s", project.ConfigFile())
		}

		if err := project.CheckLayout(); err != nil {
			log.Fatalf("%v", err)
		}

		s := newSetup()
		if err := s.EnsureVenv(cmd.Context()); err != nil {
			log.Fatalf("%v", err)
		}
		if err := s.InstallCore(cmd.Context(), false); err != nil {
			log.Fatalf("%v", err)
		}
		audit("SETUP", fmt.Sprintf("core: %s", s.CoreURL()))

		log.Info("--------------------------------")
		log.Info(i18n.T("setup.restart_notice"))
		log.Info("--------------------------------")
	},
}

// updateCmd forces a reinstall of the companion package.
var updateCmd = &cobra.Command{
	Use:     "update",
	Short:   "Force reinstall of the companion course package",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		s := newSetup()
		if err := s.Update(cmd.Context()); err != nil {
			log.Fatalf("%v", err)
		}
		audit("UPDATE", fmt.Sprintf("core: %s", s.CoreURL()))
		log.Info(i18n.T("update.done"))
	},
}

// doctorCheck is a single named validation.
type doctorCheck struct {
	name string
	run  func() error
}

// doctorChecks assembles the validations doctor runs, in order.
func doctorChecks() []doctorCheck {
	return []doctorCheck{
		{"project layout", func() error { return project.CheckLayout() }},
		{"virtual environment", func() error {
			if !project.HasVenv() {
				return fmt.Errorf("missing %s/ (run 'tk setup')", workspace.VenvDir)
			}
			return nil
		}},
		{"venv interpreter", func() error {
			if !project.HasVenvInterpreter() {
				return fmt.Errorf("no interpreter in %s (try restarting PyCharm, or re-run 'tk setup')", project.VenvBin())
			}
			return nil
		}},
		{"state store", func() error {
			if !db.IsInitialized() {
				return fmt.Errorf("state store not reachable (%s)", appConfig.Database.Dsn)
			}
			return nil
		}},
		{"dropbox dir", func() error {
			if appConfig.Dropbox.Dir == "" {
				return nil // optional until sync is used
			}
			info, err := os.Stat(appConfig.Dropbox.Dir)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("configured dropbox.dir not found: %s", appConfig.Dropbox.Dir)
			}
			return nil
		}},
	}
}

// doctorCmd validates the workspace and reports each check.
var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Short:   "Validate the workspace layout and environment",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, c := range doctorChecks() {
			if err := c.run(); err != nil {
				failed++
				log.Errorf("%s: %v", c.name, err)
				continue
			}
			log.Infof("%s: ok", c.name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(doctorChecks()))
		}
		log.Info(i18n.T("doctor.all_good"))
		return nil
	},
}
