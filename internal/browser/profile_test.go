package browser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscraper/internal/browser"
)

func TestEnsureProfileDir_CreatesMissing(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "nested", "inscraperChromeProfile")
	got, err := browser.EnsureProfileDir(target)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(got))
	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureProfileDir_ReusesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marker := filepath.Join(dir, "Local State")
	require.NoError(t, os.WriteFile(marker, []byte("{}"), 0o644))

	got, err := browser.EnsureProfileDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.FileExists(t, marker)
}

func TestEnsureProfileDir_FailsOnFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := browser.EnsureProfileDir(filepath.Join(file, "profile"))
	assert.Error(t, err)
}
