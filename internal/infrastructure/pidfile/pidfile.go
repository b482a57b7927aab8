package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrNotRunning is returned by KillExisting when no live daemon owns the file
var ErrNotRunning = errors.New("no running daemon")

// PIDFile manages a process ID file for daemon single-instance enforcement
type PIDFile struct {
	path        string
	killTimeout time.Duration
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path, killTimeout: 10 * time.Second}
}

// Path returns the PID file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire attempts to acquire the PID file lock.
// Returns an error if another instance is already running.
func (p *PIDFile) Acquire() error {
	pid, err := p.ReadPID()
	switch {
	case err == nil:
		if isProcessRunning(pid) {
			return fmt.Errorf("daemon is already running (PID %d)", pid)
		}
		// Process is dead - remove stale PID file
		_ = os.Remove(p.path)
	case errors.Is(err, os.ErrNotExist):
	default:
		// Unreadable or invalid PID file - remove it and continue
		_ = os.Remove(p.path)
	}

	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create PID directory: %w", err)
		}
	}

	pidData := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(pidData), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	return nil
}

// ReadPID returns the process id stored in the file
func (p *PIDFile) ReadPID() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// KillExisting sends SIGTERM to the daemon named in the PID file and waits
// for it to exit, escalating to SIGKILL after the kill timeout.
func (p *PIDFile) KillExisting() error {
	pid, err := p.ReadPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotRunning
		}
		_ = os.Remove(p.path)
		return nil
	}
	if pid == os.Getpid() {
		return fmt.Errorf("PID file %s names this process", p.path)
	}
	if !isProcessRunning(pid) {
		_ = os.Remove(p.path)
		return nil
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("failed to signal PID %d: %w", pid, err)
	}

	deadline := time.Now().Add(p.killTimeout)
	for time.Now().Before(deadline) {
		if !isProcessRunning(pid) {
			_ = os.Remove(p.path)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("failed to kill PID %d: %w", pid, err)
	}
	_ = os.Remove(p.path)
	return nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning checks if a process with the given PID is running
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix FindProcess always succeeds; signal 0 probes for existence
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) || err == syscall.ESRCH {
		return false
	}
	// EPERM: the process exists but belongs to someone else
	return err == syscall.EPERM
}
