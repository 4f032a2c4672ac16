// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/brenoschmidt/toolkit/internal/i18n"
	"github.com/brenoschmidt/toolkit/internal/scratch"
)

var (
	scratchCopyPath  bool
	scratchOlderThan int
	scratchDryRun    bool
)

// scratchCmd groups commands for the throwaway-code holding area.
var scratchCmd = &cobra.Command{
	Use:   "scratch",
	Short: "Manage the scratch area for throwaway code",
	Long: `The scratch/ directory is a holding area for test snippets, prototypes
and debugging experiments. Entries are dated directories; stale ones can be
archived away with 'tk scratch clean'. Nothing in scratch/ is ever executed
by the toolkit.`,
}

// scratchNewCmd creates a dated scratch entry.
var scratchNewCmd = &cobra.Command{
	Use:     "new <name>",
	Short:   "Create a dated scratch directory",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := scratch.New(project, args[0], time.Now())
		if err != nil {
			log.Fatalf("%v", err)
		}
		audit("SCRATCH_NEW", fmt.Sprintf("entry: %s", dir))
		log.Infof(i18n.T("scratch.created"), dir)

		if scratchCopyPath {
			if err := clipboard.WriteAll(dir); err != nil {
				log.Warnf("could not copy path to clipboard: %v", err)
			} else {
				log.Info(i18n.T("scratch.copied"))
			}
		}
	},
}

// scratchListCmd prints scratch entries with age and size.
var scratchListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List scratch entries",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := scratch.List(project)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			log.Info(i18n.T("scratch.none"))
			return nil
		}
		now := time.Now()
		for _, e := range entries {
			days := int(e.Age(now).Hours() / 24)
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s %4dd old %8d bytes\n", e.Name, days, e.Size)
		}
		return nil
	},
}

// scratchCleanCmd archives and removes stale entries.
var scratchCleanCmd = &cobra.Command{
	Use:     "clean",
	Short:   "Archive and remove stale scratch entries",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		maxAge := time.Duration(scratchOlderThan) * 24 * time.Hour
		cleaned, err := scratch.Clean(cmd.Context(), project, maxAge, appConfig.Backup.Dir, scratchDryRun, time.Now())
		if err != nil {
			log.Fatalf("%v", err)
		}
		if len(cleaned) == 0 {
			log.Info(i18n.T("scratch.nothing_stale"))
			return
		}
		if scratchDryRun {
			for _, e := range cleaned {
				fmt.Fprintf(cmd.OutOrStdout(), "would archive %s\n", e.Name)
			}
			return
		}
		audit("SCRATCH_CLEAN", fmt.Sprintf("entries: %d", len(cleaned)))
		log.Infof(i18n.T("scratch.cleaned"), len(cleaned))
	},
}

func init() {
	scratchNewCmd.Flags().BoolVar(&scratchCopyPath, "copy", false, "Copy the created path to the clipboard")
	scratchCleanCmd.Flags().IntVar(&scratchOlderThan, "older-than", 30, "Age in days before an entry counts as stale")
	scratchCleanCmd.Flags().BoolVarP(&scratchDryRun, "dry-run", "n", false, "Show what would be archived without touching anything")
	scratchCmd.AddCommand(scratchNewCmd, scratchListCmd, scratchCleanCmd)
}
