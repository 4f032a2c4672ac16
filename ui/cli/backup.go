// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/brenoschmidt/toolkit/internal/backup"
	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/i18n"
	"github.com/brenoschmidt/toolkit/internal/remote"
)

var restoreForce bool

// backupCmd creates a compressed snapshot of the project.
var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Create a compressed (zstd) snapshot of the project",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a, err := backup.Create(ctx, project, backup.Options{Dir: appConfig.Backup.Dir})
		if err != nil {
			log.Fatalf("%v", err)
		}
		if _, err := db.Get().AddBackup(ctx, a.Path, a.SHA256, a.Size, a.CreatedAt); err != nil {
			log.Fatalf("could not record backup: %v", err)
		}
		audit("BACKUP", fmt.Sprintf("archive: %s", a.Path))
		log.Infof(i18n.T("backup.created"), a.Path, a.Size)

		if err := backup.Prune(ctx, db.Get(), appConfig.Backup.Keep); err != nil {
			log.Warnf("prune failed: %v", err)
		}
	},
}

// backupListCmd prints recorded backups, newest first.
var backupListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recorded backups",
	Args:    cobra.NoArgs,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := db.Get().GetAllBackups(cmd.Context())
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			log.Info(i18n.T("backup.none"))
			return nil
		}
		for _, b := range backups {
			status := ""
			if b.Pushed() {
				status = "  pushed " + b.PushedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %8d bytes  %s%s\n",
				b.CreatedAt.Format("2006-01-02 15:04"), b.Size, b.Path, status)
		}
		return nil
	},
}

// backupPushCmd uploads an archive to the configured SFTP remote.
var backupPushCmd = &cobra.Command{
	Use:     "push [archive]",
	Short:   "Upload a backup archive to the configured SFTP remote",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store := db.Get()

		var target string
		if len(args) == 1 {
			target = args[0]
		} else {
			backups, err := store.GetAllBackups(ctx)
			if err != nil {
				log.Fatalf("%v", err)
			}
			if len(backups) == 0 {
				log.Fatalf("%s", i18n.T("backup.none"))
			}
			target = backups[0].Path
		}

		rec, err := store.GetBackupByPath(ctx, target)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Fatalf("%v", err)
		}

		pusher, err := remote.Dial(remote.Config{
			Host:    appConfig.Remote.Host,
			Port:    appConfig.Remote.Port,
			User:    appConfig.Remote.User,
			Path:    appConfig.Remote.Path,
			KeyFile: appConfig.Remote.KeyFile,
			HostKey: appConfig.Remote.HostKey,
		}, promptPassword)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer func() { _ = pusher.Close() }()

		remotePath, err := pusher.Upload(ctx, target)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if rec != nil {
			if err := store.MarkBackupPushed(ctx, rec.ID, time.Now()); err != nil {
				log.Warnf("could not mark backup as pushed: %v", err)
			}
		}
		audit("BACKUP_PUSH", fmt.Sprintf("archive: %s -> %s", target, remotePath))
		log.Infof(i18n.T("backup.pushed"), remotePath)
	},
}

// restoreCmd unpacks an archive into the project.
var restoreCmd = &cobra.Command{
	Use:     "restore <archive>",
	Short:   "Restore files from a backup archive into the project",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	Run: func(cmd *cobra.Command, args []string) {
		n, err := backup.Restore(cmd.Context(), args[0], project.Root, restoreForce)
		if err != nil {
			log.Fatalf("%v", err)
		}
		audit("RESTORE", fmt.Sprintf("archive: %s, files: %d", args[0], n))
		log.Infof(i18n.T("restore.done"), n)
	},
}

// promptPassword reads a password from the terminal without echo.
func promptPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no terminal available to prompt for a password; configure remote.key_file")
	}
	fmt.Fprint(os.Stderr, i18n.T("remote.password_prompt"))
	defer fmt.Fprintln(os.Stderr)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func init() {
	backupCmd.AddCommand(backupListCmd, backupPushCmd)
	restoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite existing files while restoring")
}
