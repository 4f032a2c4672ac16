// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/i18n"
	"github.com/brenoschmidt/toolkit/internal/syncdir"
)

var (
	syncDryRun bool
	syncAll    bool
)

// syncCmd groups directory synchronization commands.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize course material from the shared folder",
}

// syncPullCmd copies new (and optionally changed) files from the configured
// Dropbox directory into the project.
var syncPullCmd = &cobra.Command{
	Use:     "pull",
	Short:   "Copy new course files from the shared folder into the project",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		if appConfig.Dropbox.Dir == "" {
			log.Fatalf("%s", i18n.T("sync.no_source"))
		}
		ctx := cmd.Context()

		plan, err := syncdir.BuildPlan(ctx, appConfig.Dropbox.Dir, project, db.Get(), syncAll)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if syncDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), syncdir.Describe(plan))
			return
		}
		n, err := syncdir.Apply(ctx, db.Get(), plan)
		if err != nil {
			log.Fatalf("%v", err)
		}
		audit("SYNC_PULL", fmt.Sprintf("source: %s, files: %d", appConfig.Dropbox.Dir, n))
		log.Infof(i18n.T("sync.done"), n, plan.Unchanged+plan.SkippedLocal)
	},
}

func init() {
	syncPullCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "Show what would be copied without copying")
	syncPullCmd.Flags().BoolVar(&syncAll, "all", false, "Also overwrite local files whose upstream content changed")
	syncCmd.AddCommand(syncPullCmd)
}
