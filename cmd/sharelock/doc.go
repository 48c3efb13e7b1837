// Package main implements sharelock, a cross-process file lock for the shell
//
// sharelock lets cooperating processes on one host take turns on a guarded
// section by holding an exclusive advisory lock on a shared file. The lock is
// tied to an open descriptor, so it disappears with the process that held it
// and a crashed holder never leaves a stale lock behind.
//
// # Command-Line Documentation
//
// This package provides the command-line interface. The lock itself lives in
// github.com/bashhack/sharelock/pkg/lock and can be used directly from Go.
//
// # Commands
//
//	sharelock create [PATH]                 Create a lock file exclusively
//	sharelock run [flags] [PATH] -- CMD...  Run CMD while holding the lock
//	sharelock status [PATH]                 Report whether the lock is held
//	sharelock remove [PATH]                 Remove a lock file nobody holds
//
// PATH defaults to the lockPath setting, then to lock.lock in the working
// directory.
//
// # Basic Usage
//
//	sharelock run /tmp/backup.lock -- rsync -a src/ dst/
//	sharelock run --timeout 30s jobs.lock -- ./nightly.sh
//	sharelock run --nonblock -E 75 jobs.lock -- ./nightly.sh
//	sharelock run --create --remove build.lock -- make
//
// # Configuration Options
//
// Flags of the run command, with their environment variables:
//
//	-c, --create              Create the lock file, fail if it exists (env: SHARELOCK_CREATE)
//	-l, --label               Identifier used in logs (env: SHARELOCK_LABEL)
//	-w, --timeout             Maximum wait, e.g. 30s (env: SHARELOCK_TIMEOUT)
//	-n, --nonblock            Single attempt, no waiting (env: SHARELOCK_NONBLOCK)
//	-r, --remove              Remove the lock file when done (env: SHARELOCK_REMOVE)
//	-E, --conflict-exit-code  Exit status when the lock is busy (env: SHARELOCK_CONFLICT_EXIT_CODE)
//
// Flags accepted by every command:
//
//	    --config    YAML configuration file (env: SHARELOCK_CONFIG)
//	-q, --quiet     Hide informational messages (env: SHARELOCK_VERBOSE=false)
//	-d, --debug     Enable detailed logging (env: SHARELOCK_DEBUG=true)
//	    --log-file  Debug log path (env: SHARELOCK_LOG_FILE)
//
// # Exit Status
//
//	0        success, or the lock is free (status)
//	1        error, or the lock is held (status)
//	N        the exit status of the guarded command (run)
//	E        the lock was not obtained in time (run, remove; default 1)
//	127      the guarded command could not be started
//	130      interrupted while waiting for the lock
//
// # Signal Handling
//
// SIGINT, SIGTERM and SIGHUP stop a pending wait for the lock. While the
// guarded command runs they are forwarded to it as an interrupt, and the lock
// is released once it exits.
package main
