package reload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBinary(t *testing.T, mode os.FileMode, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routine")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestShouldReloadNewerBinary(t *testing.T) {
	since := time.Now().Add(-time.Minute).Truncate(time.Second)
	path := writeBinary(t, 0o755, since.Add(10*time.Second))
	assert.True(t, ShouldReload(path, since))
}

func TestShouldReloadAtBoundary(t *testing.T) {
	since := time.Now().Add(-time.Minute).Truncate(time.Second)
	path := writeBinary(t, 0o755, since)
	assert.True(t, ShouldReload(path, since), "modification time equal to since counts")
}

func TestShouldReloadOlderBinary(t *testing.T) {
	since := time.Now().Truncate(time.Second)
	path := writeBinary(t, 0o755, since.Add(-time.Hour))
	assert.False(t, ShouldReload(path, since))
}

func TestShouldReloadNotExecutable(t *testing.T) {
	since := time.Now().Add(-time.Minute).Truncate(time.Second)
	path := writeBinary(t, 0o644, since.Add(10*time.Second))
	assert.False(t, ShouldReload(path, since))
}

func TestShouldReloadMissing(t *testing.T) {
	assert.False(t, ShouldReload(filepath.Join(t.TempDir(), "nope"), time.Time{}))
}

func TestShouldReloadDirectory(t *testing.T) {
	assert.False(t, ShouldReload(t.TempDir(), time.Time{}))
}

func TestExecMissingBinaryFails(t *testing.T) {
	err := Exec(filepath.Join(t.TempDir(), "nope"), []string{"nope"})
	assert.Error(t, err)
}
