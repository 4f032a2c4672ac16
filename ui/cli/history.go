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
)

var historyLimit int

// historyCmd prints the audit log, newest first.
var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Show the action history for this workspace",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := db.Get().GetAllAuditLogEntries(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			log.Info(i18n.T("history.empty"))
			return nil
		}
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-14s %s\n", e.Timestamp, e.Action, e.Details)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show (0 for all)")
}
