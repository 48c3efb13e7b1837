package main

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the sharelock command tree bound to the app's
// configuration.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sharelock",
		Short: "Run commands under a cross-process file lock",
		Long: `sharelock takes an exclusive advisory lock on a file so that
cooperating processes on the same host never run a guarded section at the
same time.`,
		Version:       a.Config.VersionInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(c *cobra.Command, args []string) {
			_ = c.Help()
		},
	}

	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	a.Config.SetupGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		a.newCreateCommand(),
		a.newRunCommand(),
		a.newRemoveCommand(),
		a.newStatusCommand(),
	)

	return root
}

// lockPathArg returns the optional PATH argument.
func lockPathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
