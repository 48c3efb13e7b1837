package main

import (
	"github.com/spf13/cobra"
)

func (a *App) newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [PATH]",
		Short: "Create a lock file, failing if it already exists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, lockPathArg(args)); err != nil {
				return err
			}
			return a.createLock()
		},
	}
}

func (a *App) createLock() error {
	if _, err := a.openLock(true); err != nil {
		return err
	}

	a.Logger.Success("Created lock file %s", a.Config.LockPath)
	return nil
}
