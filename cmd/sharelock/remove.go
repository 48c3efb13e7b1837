package main

import (
	"github.com/spf13/cobra"
)

func (a *App) newRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [PATH]",
		Short: "Remove a lock file that no process holds",
		Long: `Remove a lock file that no process holds.

remove takes the lock with a single attempt before deleting the file. A file
held by another process at that moment is left alone and remove exits with
the conflict exit code. The lock is dropped when the file is closed, just
before it is unlinked; a process that opened the file earlier can take the
lock in between and keeps it on the unlinked file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, lockPathArg(args)); err != nil {
				return err
			}
			return a.removeLock()
		},
	}

	cmd.Flags().IntVarP(&a.Config.ConflictExitCode, "conflict-exit-code", "E", a.Config.ConflictExitCode, "Exit status when the lock is held")

	return cmd
}

func (a *App) removeLock() error {
	h, err := a.openLock(false)
	if err != nil {
		return err
	}

	acquired, err := h.AcquireTimeout(0)
	if err != nil {
		return err
	}
	if !acquired {
		a.Logger.WarningToUser("Lock %s is held by another process, not removing it", a.Config.LockPath)
		return &exitError{code: a.Config.ConflictExitCode}
	}

	a.removeOnClose = true
	a.Logger.Success("Removed lock file %s", a.Config.LockPath)
	return nil
}
