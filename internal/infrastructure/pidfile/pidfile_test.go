package pidfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/pidfile"
)

func TestAcquire_WritesCurrentPID(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "run", "plannerd.pid")
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	pid, err := pf.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_FailsWhileOwnerIsAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plannerd.pid")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644))

	err := pidfile.New(path).Acquire()

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already running"))
}

func TestAcquire_ReplacesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plannerd.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	err := pidfile.New(path).Acquire()

	require.NoError(t, err)
}

func TestKillExisting_NoFile(t *testing.T) {
	pf := pidfile.New(filepath.Join(t.TempDir(), "missing.pid"))

	err := pf.KillExisting()

	assert.ErrorIs(t, err, pidfile.ErrNotRunning)
}

func TestKillExisting_RefusesOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plannerd.pid")
	pf := pidfile.New(path)
	require.NoError(t, pf.Acquire())

	err := pf.KillExisting()

	require.Error(t, err)
}

func TestRelease_IsIdempotent(t *testing.T) {
	pf := pidfile.New(filepath.Join(t.TempDir(), "plannerd.pid"))
	require.NoError(t, pf.Acquire())

	require.NoError(t, pf.Release())
	require.NoError(t, pf.Release())
	_, err := os.Stat(pf.Path())
	assert.True(t, os.IsNotExist(err))
}
