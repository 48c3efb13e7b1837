// Package config provides configuration handling for the sharelock command.
//
// It gathers every setting that controls how a lock file is opened, how long
// sharelock waits for it and what happens once the guarded command finishes.
// Values are validated and completed by Finalize before they are used.
//
// # Core Components
//
// - Config: Main configuration type that holds all sharelock settings
// - VersionInfo: Type for version, commit, and build date information
//
// # Configuration Sources
//
// Configuration values are loaded with the following precedence:
//
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. YAML configuration file (--config or SHARELOCK_CONFIG)
// 4. Default values (lowest priority)
//
// # Environment Variables
//
//	SHARELOCK_LOCK_PATH           Lock file (default: ./lock.lock)
//	SHARELOCK_CREATE              Create the lock file exclusively (default: false)
//	SHARELOCK_LABEL               Identifier used in logs (default: random UUID)
//	SHARELOCK_TIMEOUT             Maximum wait, as a Go duration (default: 0, wait forever)
//	SHARELOCK_NONBLOCK            Single attempt, no waiting (default: false)
//	SHARELOCK_REMOVE              Remove the lock file on exit (default: false)
//	SHARELOCK_CONFLICT_EXIT_CODE  Exit status when the lock is busy (default: 1)
//	SHARELOCK_VERBOSE             Show informational messages (default: true)
//	SHARELOCK_DEBUG               Enable debug logging (default: false)
//	SHARELOCK_LOG_FILE            Debug log path
//	SHARELOCK_CONFIG              YAML configuration file
//
// # Configuration File
//
// The YAML file uses the same settings in camelCase:
//
//	lockPath: /var/run/backup.lock
//	timeout: 30s
//	removeOnExit: true
//	conflictExitCode: 75
//
// # Usage Example
//
//	cfg := config.New()
//	cfg.SetupGlobalFlags(cmd.PersistentFlags())
//	cfg.SetupLockFlags(cmd.Flags())
//
//	// after cobra parsed the arguments
//	if err := cfg.Resolve(cmd.Flags()); err != nil {
//	    return err
//	}
//	if err := cfg.Finalize(); err != nil {
//	    return err
//	}
package config
