package main

import (
	"context"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
)

// exitNotFound is the status used when the guarded command cannot be found.
const exitNotFound = 127

func (a *App) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [PATH] [--] COMMAND [ARGS...]",
		Short: "Run a command while holding a lock",
		Long: `Run a command while holding a lock.

The lock is taken before COMMAND starts and released when it exits. If the
lock cannot be obtained in time, run exits with the conflict exit code
without starting COMMAND. Otherwise the exit status of COMMAND is returned.

Flags must come before PATH; anything after PATH is passed to COMMAND
untouched. Use "--" without PATH to take the lock path from the
configuration.`,
		Example: `  sharelock run /tmp/backup.lock -- rsync -a src/ dst/
  sharelock run --timeout 30s --remove jobs.lock -- ./nightly.sh
  sharelock run jobs.lock sh -c 'make deploy'
  sharelock run --nonblock -E 75 -- make deploy`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lockPath, argv, err := splitRunArgs(args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}
			if err := a.setup(cmd, lockPath); err != nil {
				return err
			}
			return a.runLocked(cmd.Context(), argv)
		},
	}

	a.Config.SetupLockFlags(cmd.Flags())
	// everything after PATH belongs to the guarded command
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// splitRunArgs separates the optional lock path from the guarded command.
// Flag parsing stops at the first positional argument, so dash is 0 when
// "--" came before any of them and -1 otherwise; in that case a "--" right
// after PATH is still part of args.
func splitRunArgs(args []string, dash int) (string, []string, error) {
	var lockPath string
	argv := args

	if dash != 0 && len(args) > 0 {
		lockPath, argv = args[0], args[1:]
		if len(argv) > 0 && argv[0] == "--" {
			argv = argv[1:]
		}
	}

	if len(argv) == 0 {
		return "", nil, sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, "no command given, expected [PATH] [--] COMMAND")
	}
	return lockPath, argv, nil
}

// runLocked runs argv while holding the configured lock.
func (a *App) runLocked(ctx context.Context, argv []string) error {
	h, err := a.openLock(a.Config.Create)
	if err != nil {
		return err
	}

	acquired, err := a.acquire(ctx, h)
	if err != nil {
		return err
	}
	if !acquired {
		a.Logger.WarningToUser("Lock %s is held by another process", a.Config.LockPath)
		return &exitError{code: a.Config.ConflictExitCode}
	}

	// Only the holder may remove the file
	a.removeOnClose = a.Config.RemoveOnExit

	a.Logger.Info("Running %q under lock %s", argv, a.Config.LockPath)
	code, runErr := a.runCommand(ctx, argv)
	a.Logger.Info("Command exited with status %d", code)

	if err := h.Release(); err != nil {
		runErr = sharelockErrors.Join(runErr, err)
	}

	if runErr != nil {
		return runErr
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// execCommand is the default CommandRunner. It starts argv as a child
// process and forwards an interrupt to it when ctx is cancelled.
func (a *App) execCommand(ctx context.Context, argv []string) (int, error) {
	path, err := a.execLookPath(argv[0])
	if err != nil {
		return exitNotFound, &exitError{code: exitNotFound, err: sharelockErrors.Wrapf(err, "cannot run %s", argv[0])}
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin = a.Stdin
	cmd.Stdout = a.Stdout
	cmd.Stderr = a.Stderr

	if err := cmd.Start(); err != nil {
		return exitNotFound, &exitError{code: exitNotFound, err: sharelockErrors.Wrapf(err, "cannot start %s", argv[0])}
	}

	done := make(chan struct{})
	var g errgroup.Group

	g.Go(func() error {
		defer close(done)
		return cmd.Wait()
	})

	g.Go(func() error {
		select {
		case <-done:
		case <-ctx.Done():
			a.Logger.Info("Forwarding interrupt to %s (pid %d)", argv[0], cmd.Process.Pid)
			// os.Interrupt cannot be delivered on every platform
			if err := cmd.Process.Signal(os.Interrupt); err != nil {
				_ = cmd.Process.Kill()
			}
		}
		return nil
	})

	err = g.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if sharelockErrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// terminated by a signal
			code = 1
		}
		return code, nil
	}
	return 1, sharelockErrors.Wrapf(err, "failed to wait for %s", argv[0])
}
