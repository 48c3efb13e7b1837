package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/gofrs/uuid/v5"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"

	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
	"github.com/bashhack/sharelock/pkg/lock"
)

const (
	// DefaultConflictExitCode is the exit status of "run" when the lock could
	// not be obtained within the deadline.
	DefaultConflictExitCode = 1

	// EnvPrefix prefixes every environment variable read by LoadFromEnvironment.
	EnvPrefix = "SHARELOCK_"
)

// Config holds all sharelock settings.
// It combines defaults, an optional YAML file, environment variables and
// command-line flags, in that order of increasing precedence.
type Config struct {
	// Lock configuration

	// LockPath is the lock file. Defaults to lock.DefaultPath in the
	// working directory.
	LockPath string

	// Create makes the lock file with exclusive creation instead of opening
	// an existing one.
	Create bool

	// Label identifies this process in logs. A random one is generated when
	// empty.
	Label string

	// Timeout bounds the wait for the lock. Zero waits indefinitely.
	Timeout time.Duration

	// NonBlocking makes a single attempt to take the lock.
	NonBlocking bool

	// RemoveOnExit deletes the lock file when the handle is disposed.
	RemoveOnExit bool

	// ConflictExitCode is the exit status when the lock was not obtained.
	ConflictExitCode int

	// User experience options

	// Verbose controls informational output.
	Verbose bool

	// Debugging options

	// Debug enables structured logging to LogFile.
	Debug bool

	// LogFile is where debug logs go. Derived from LockPath when empty.
	LogFile string

	// ConfigFile is an optional YAML file loaded before the environment.
	ConfigFile string

	// Build metadata
	VersionInfo VersionInfo

	// ParsedQuiet tracks the state of the --quiet flag.
	// Used after flag parsing to handle flag inversion.
	ParsedQuiet *bool
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// String formats the version the way "--version" prints it.
func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", v.Version, v.Commit, v.Date)
}

// fileConfig mirrors Config for YAML files; nil fields are left untouched.
type fileConfig struct {
	LockPath         *string `json:"lockPath"`
	Create           *bool   `json:"create"`
	Label            *string `json:"label"`
	Timeout          *string `json:"timeout"`
	NonBlocking      *bool   `json:"nonBlocking"`
	RemoveOnExit     *bool   `json:"removeOnExit"`
	ConflictExitCode *int    `json:"conflictExitCode"`
	Verbose          *bool   `json:"verbose"`
	Debug            *bool   `json:"debug"`
	LogFile          *string `json:"logFile"`
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		ConflictExitCode: DefaultConflictExitCode,
		Verbose:          true,

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromFile updates config from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return sharelockErrors.NewConfigError("config", path,
			sharelockErrors.Mark(err, sharelockErrors.ErrInvalidConfiguration))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return sharelockErrors.NewConfigError("config", path,
			sharelockErrors.Mark(err, sharelockErrors.ErrInvalidConfiguration))
	}

	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return sharelockErrors.NewConfigError("timeout", *fc.Timeout,
				sharelockErrors.Mark(err, sharelockErrors.ErrInvalidConfiguration))
		}
		c.Timeout = d
	}

	setIfPresent(&c.LockPath, fc.LockPath)
	setIfPresent(&c.Create, fc.Create)
	setIfPresent(&c.Label, fc.Label)
	setIfPresent(&c.NonBlocking, fc.NonBlocking)
	setIfPresent(&c.RemoveOnExit, fc.RemoveOnExit)
	setIfPresent(&c.ConflictExitCode, fc.ConflictExitCode)
	setIfPresent(&c.Verbose, fc.Verbose)
	setIfPresent(&c.Debug, fc.Debug)
	setIfPresent(&c.LogFile, fc.LogFile)

	c.ConfigFile = path
	return nil
}

// LoadFromEnvironment updates config from SHARELOCK_* environment variables
func (c *Config) LoadFromEnvironment() {
	c.LockPath = getEnvString("LOCK_PATH", c.LockPath)
	c.Create = getEnvBool("CREATE", c.Create)
	c.Label = getEnvString("LABEL", c.Label)
	c.Timeout = getEnvDuration("TIMEOUT", c.Timeout)
	c.NonBlocking = getEnvBool("NONBLOCK", c.NonBlocking)
	c.RemoveOnExit = getEnvBool("REMOVE", c.RemoveOnExit)
	c.ConflictExitCode = getEnvInt("CONFLICT_EXIT_CODE", c.ConflictExitCode)
	c.Verbose = getEnvBool("VERBOSE", c.Verbose)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
	c.ConfigFile = getEnvString("CONFIG", c.ConfigFile)
}

// SetupGlobalFlags registers the flags shared by every command.
func (c *Config) SetupGlobalFlags(fs *pflag.FlagSet) {
	var quiet bool

	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Path to a YAML configuration file")
	fs.BoolVarP(&quiet, "quiet", "q", !c.Verbose, "Hide informational messages")
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/sharelock/logs/sharelock-{lock-hash}.log)")

	c.ParsedQuiet = &quiet
}

// SetupLockFlags registers the flags that describe how the lock is taken.
func (c *Config) SetupLockFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.Create, "create", "c", c.Create, "Create the lock file, failing if it already exists")
	fs.StringVarP(&c.Label, "label", "l", c.Label, "Identifier of this process in logs (default: random)")
	fs.DurationVarP(&c.Timeout, "timeout", "w", c.Timeout, "Give up if the lock is not obtained within this duration (0 = wait indefinitely)")
	fs.BoolVarP(&c.NonBlocking, "nonblock", "n", c.NonBlocking, "Fail immediately if the lock is held")
	fs.BoolVarP(&c.RemoveOnExit, "remove", "r", c.RemoveOnExit, "Remove the lock file when done")
	fs.IntVarP(&c.ConflictExitCode, "conflict-exit-code", "E", c.ConflictExitCode, "Exit status when the lock is not obtained")
}

// Resolve applies the config file and the environment underneath the flags
// the user set explicitly, so that flags keep the highest precedence.
func (c *Config) Resolve(fs *pflag.FlagSet) error {
	changed := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	configFile := c.ConfigFile
	if configFile == "" {
		configFile = getEnvString("CONFIG", "")
	}
	if configFile != "" {
		if err := c.LoadFromFile(configFile); err != nil {
			return err
		}
	}

	c.LoadFromEnvironment()

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return sharelockErrors.NewConfigError(name, value,
				sharelockErrors.Mark(err, sharelockErrors.ErrInvalidConfiguration))
		}
	}

	// --quiet only has an effect when given
	if c.ParsedQuiet != nil && fs.Changed("quiet") {
		c.Verbose = !*c.ParsedQuiet
	}

	return nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.Timeout < 0 {
		return sharelockErrors.NewConfigError("timeout", c.Timeout.String(),
			sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, "must not be negative"))
	}

	if c.NonBlocking && c.Timeout > 0 {
		return sharelockErrors.NewConfigError("timeout", c.Timeout.String(),
			sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, "cannot be combined with nonblock"))
	}

	if c.ConflictExitCode < 0 || c.ConflictExitCode > 255 {
		return sharelockErrors.NewConfigError("conflictExitCode", c.ConflictExitCode,
			sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, "must be between 0 and 255"))
	}

	if c.LockPath == "" {
		c.LockPath = lock.DefaultPath
	}

	absLockPath, err := filepath.Abs(c.LockPath)
	if err != nil {
		return sharelockErrors.NewConfigError("lockPath", c.LockPath,
			sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.LockPath = absLockPath

	if c.Label == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return sharelockErrors.NewConfigError("label", nil,
				sharelockErrors.Wrap(sharelockErrors.ErrInvalidConfiguration, fmt.Sprintf("failed to generate label: %v", err)))
		}
		c.Label = id.String()
	}

	if c.LogFile == "" {
		// Follow XDG Base Directory Specification
		logDir := os.Getenv("XDG_DATA_HOME")
		if logDir == "" {
			if homeDir, err := homedir.Dir(); err == nil {
				logDir = filepath.Join(homeDir, ".local", "share")
			} else {
				logDir = os.TempDir()
			}
		}

		lockHash := fmt.Sprintf("%x", sha256OfString(c.LockPath)[:8])
		c.LogFile = filepath.Join(logDir, "sharelock", "logs", fmt.Sprintf("sharelock-%s.log", lockHash))
	}

	return nil
}

// Deadline reports how long to wait for the lock and whether the wait is
// bounded at all.
func (c *Config) Deadline() (time.Duration, bool) {
	switch {
	case c.NonBlocking:
		return 0, true
	case c.Timeout > 0:
		return c.Timeout, true
	}
	return 0, false
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(EnvPrefix + key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(EnvPrefix + key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvDuration returns an environment variable as a duration or a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(EnvPrefix + key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(EnvPrefix + key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}

// sha256OfString returns the SHA256 hash of a string
func sha256OfString(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}
