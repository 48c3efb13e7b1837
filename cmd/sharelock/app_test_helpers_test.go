package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MockLocker implements the Locker interface for testing
type MockLocker struct {
	AcquireResult bool
	AcquireErr    error
	ReleaseErr    error
	DisposeErr    error

	TimeoutCalled      bool
	ContextCalled      bool
	ReleaseCalled      bool
	DisposeCalled      bool
	RemovedFile        bool
	LastTimeout        time.Duration
	ContextHasDeadline bool
	locked             bool
}

func (m *MockLocker) AcquireTimeout(timeout time.Duration) (bool, error) {
	m.TimeoutCalled = true
	m.LastTimeout = timeout
	m.locked = m.AcquireResult && m.AcquireErr == nil
	return m.locked, m.AcquireErr
}

func (m *MockLocker) AcquireContext(ctx context.Context) (bool, error) {
	m.ContextCalled = true
	_, m.ContextHasDeadline = ctx.Deadline()
	m.locked = m.AcquireResult && m.AcquireErr == nil
	return m.locked, m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCalled = true
	if m.ReleaseErr == nil {
		m.locked = false
	}
	return m.ReleaseErr
}

func (m *MockLocker) Dispose(removeBackingFile bool) error {
	m.DisposeCalled = true
	m.RemovedFile = removeBackingFile
	m.locked = false
	return m.DisposeErr
}

func (m *MockLocker) Locked() bool {
	return m.locked
}

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mu sync.Mutex

	InfoCalled          bool
	WarningCalled       bool
	WarningToUserCalled bool
	ErrorCalled         bool
	SuccessCalled       bool
	StatusCalled        bool
	CloseCalled         bool
	CloseErr            error
	LastMessage         string
}

func (m *MockLogger) record(flag *bool, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*flag = true
	m.LastMessage = fmt.Sprintf(format, args...)
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(&m.InfoCalled, format, args...)
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(&m.WarningCalled, format, args...)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(&m.ErrorCalled, format, args...)
}

func (m *MockLogger) InfoToUser(format string, args ...interface{}) {
	m.record(&m.InfoCalled, format, args...)
}

func (m *MockLogger) WarningToUser(format string, args ...interface{}) {
	m.record(&m.WarningToUserCalled, format, args...)
}

func (m *MockLogger) Success(format string, args ...interface{}) {
	m.record(&m.SuccessCalled, format, args...)
}

func (m *MockLogger) StatusMessage(format string, args ...interface{}) {
	m.record(&m.StatusCalled, format, args...)
}

func (m *MockLogger) Structured() zerolog.Logger {
	return zerolog.Nop()
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseErr
}
