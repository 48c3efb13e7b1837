// Package logger provides logging facilities for sharelock.
//
// It separates two audiences. Debug logs are structured zerolog events
// written to a log file when debug logging is on. User-facing messages go to
// stdout/stderr with a short emoji prefix, whatever the debug setting.
//
// # Core Components
//
// - Logger: the interface used throughout the application
// - DefaultLogger: the implementation writing to a file and the console
//
// # Message Types
//
// - Info: debug-only information
// - Warning: shown to users when verbose, always logged
// - Error: always shown on stderr, always logged
// - InfoToUser, WarningToUser, Success: always shown, always logged
// - StatusMessage: shown, never logged
//
// # Structured Events
//
// Structured returns the zerolog.Logger behind the log file so that
// libraries such as pkg/lock can attach fields (path, label) to their events:
//
//	h, err := lock.Open(path, lock.WithLogger(log.Structured()))
//
// When debug logging is off Structured returns a disabled logger.
//
// # Resource Management
//
// Call Close before exiting so that the log file is synced and closed.
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use by multiple goroutines.
package logger
