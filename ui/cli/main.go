// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for the toolkit using the
// Cobra library. It defines the root command, subcommands (setup, backup,
// sync, scratch, ...), flags, and the main entry point for execution.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/brenoschmidt/toolkit/buildvars"
	"github.com/brenoschmidt/toolkit/internal/config"
	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/i18n"
	"github.com/brenoschmidt/toolkit/internal/logging"
	"github.com/brenoschmidt/toolkit/internal/workspace"
	"github.com/brenoschmidt/toolkit/ui/tui"
)

var version = "dev" // overridden by buildvars when set at link time

var (
	cfgFile     string
	projectFlag string
	verbose     bool

	appConfig config.Config
	project   workspace.Paths
)

// setupDefaultServices locates the project, loads configuration, applies
// the language and log level, and initializes the state store. It is the
// PreRunE of every command that operates on a workspace.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	start := projectFlag
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		start = wd
	}

	p, err := workspace.Find(start)
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err,
			workspace.DirTree(workspace.TreeNotes{Marker: "<- Open the folder in PyCharm first"}))
	}
	project = p

	var explicit *string
	if cfgFile != "" {
		explicit = &cfgFile
	}
	appConfig, err = config.LoadConfig[config.Config](cmd, p, config.Defaults(p), explicit)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logging.SetVerbose(verbose)
	i18n.SetLang(appConfig.Language)

	if err := validateWorkspace(cmd); err != nil {
		return err
	}

	if err := db.InitDB(appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
		return fmt.Errorf("error initializing state store: %w", err)
	}
	return nil
}

// validateWorkspace is the quick layout and venv gate controlled by the
// paths.validate config key. setup bootstraps the layout and doctor reports
// on it check by check, so both run without the gate.
func validateWorkspace(cmd *cobra.Command) error {
	if !appConfig.Paths.Validate {
		return nil
	}
	switch cmd.Name() {
	case "setup", "doctor":
		return nil
	}
	if err := project.CheckLayout(); err != nil {
		return err
	}
	if !project.HasVenv() {
		return fmt.Errorf("missing %s/ (run 'tk setup', or set paths.validate = false in %s)",
			workspace.VenvDir, workspace.ConfigName)
	}
	return nil
}

// audit writes an audit row, logging instead of failing when the store has
// trouble. Audit problems never abort the command itself.
func audit(action, details string) {
	if err := db.LogAction(action, details); err != nil {
		logging.Warnf("could not write audit entry: %v", err)
	}
}

// rootCmd is the base `tk` command.
var rootCmd = &cobra.Command{
	Use:   "tk",
	Short: "Manage the course project workspace",
	Long: `tk bootstraps and maintains a course project workspace: it creates the
Python virtual environment, installs the companion course package, pulls
course material from a shared folder, and keeps compressed backups.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// A bare `tk` on a terminal opens the interactive menu. Otherwise
		// show help, matching non-interactive use in scripts and CI.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return cmd.Help()
		}
		if err := setupDefaultServices(cmd, args); err != nil {
			return err
		}
		return tui.Run(project, appConfig)
	},
}

// versionCmd prints build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the toolkit version",
	Run: func(cmd *cobra.Command, args []string) {
		v := buildvars.VersionOrDefault(version)
		fmt.Fprintf(cmd.OutOrStdout(), "tk %s", v)
		if buildvars.GitCommit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)", buildvars.GitCommit)
		}
		if buildvars.BuildDate != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " built %s", buildvars.BuildDate)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to an explicit config file")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Project directory (default: walk up from the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		setupCmd,
		updateCmd,
		doctorCmd,
		backupCmd,
		restoreCmd,
		syncCmd,
		scratchCmd,
		historyCmd,
		versionCmd,
	)
}

// Execute runs the root command. It is the single entry point used by
// main().
func Execute() error {
	defer func() {
		if s := db.Get(); s != nil {
			_ = s.Close()
		}
	}()
	return rootCmd.Execute()
}
