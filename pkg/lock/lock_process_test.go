package lock

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// startHolder runs the test binary as a second process holding the lock at
// path, and returns once it reported the lock taken. Closing the returned
// stdin makes the holder release and exit.
func startHolder(t *testing.T, path string) (*exec.Cmd, io.WriteCloser) {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), holderEnv+"="+path)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	assert.NilError(t, err)
	stdout, err := cmd.StdoutPipe()
	assert.NilError(t, err)

	assert.NilError(t, cmd.Start())
	t.Cleanup(func() {
		_ = stdin.Close()
		_ = cmd.Wait()
	})

	line, err := bufio.NewReader(stdout).ReadString('\n')
	assert.NilError(t, err)
	assert.Equal(t, line, "locked\n")

	return cmd, stdin
}

func TestAcquireTimeout_AcrossProcesses(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping multi-process test in short mode")
	}

	path := filepath.Join(t.TempDir(), "shared.lock")
	h, err := Create(path, WithLabel("parent"), WithPollInterval(10*time.Millisecond))
	assert.NilError(t, err)
	defer func() { _ = h.Dispose(true) }()

	_, stdin := startHolder(t, path)

	start := time.Now()
	ok, err := h.AcquireTimeout(200 * time.Millisecond)
	assert.NilError(t, err)
	assert.Assert(t, !ok, "acquired a lock held by another process")
	assert.Assert(t, time.Since(start) >= 200*time.Millisecond)

	// closing stdin makes the holder release and exit
	assert.NilError(t, stdin.Close())

	start = time.Now()
	ok, err = h.AcquireTimeout(10 * time.Second)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Assert(t, time.Since(start) < 5*time.Second, "acquire took %s", time.Since(start))

	assert.NilError(t, h.Release())
}

// A holder that dies without releasing leaves no stale lock behind: the OS
// drops the lock together with the descriptor.
func TestAcquireTimeout_AfterHolderKilled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping multi-process test in short mode")
	}

	path := filepath.Join(t.TempDir(), "crashed.lock")
	h, err := Create(path, WithLabel("survivor"), WithPollInterval(10*time.Millisecond))
	assert.NilError(t, err)
	defer func() { _ = h.Dispose(true) }()

	holder, _ := startHolder(t, path)

	ok, err := h.AcquireTimeout(0)
	assert.NilError(t, err)
	assert.Assert(t, !ok)

	assert.NilError(t, holder.Process.Kill())

	ok, err = h.AcquireTimeout(10 * time.Second)
	assert.NilError(t, err)
	assert.Assert(t, ok, "lock of a killed process was not freed")

	assert.NilError(t, h.Release())
}
