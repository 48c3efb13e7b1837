package main

import (
	"github.com/spf13/cobra"
)

func (a *App) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [PATH]",
		Short: "Report whether a lock is currently held",
		Long: `Report whether a lock is currently held.

status makes a single non-blocking attempt and releases the lock right away
if it got it. It exits 0 when the lock is free and 1 when it is held.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, lockPathArg(args)); err != nil {
				return err
			}
			return a.lockStatus()
		},
	}
}

func (a *App) lockStatus() error {
	h, err := a.openLock(false)
	if err != nil {
		return err
	}

	acquired, err := h.AcquireTimeout(0)
	if err != nil {
		return err
	}

	if !acquired {
		a.Logger.StatusMessage("🔒 %s is held", a.Config.LockPath)
		return &exitError{code: 1}
	}

	if err := h.Release(); err != nil {
		return err
	}
	a.Logger.StatusMessage("🔓 %s is free", a.Config.LockPath)
	return nil
}
