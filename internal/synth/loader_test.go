package synth

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadAndVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSources), 0o644))

	loader := NewLoader(path, false, slog.Default())
	assert.Nil(t, loader.Table())
	assert.Zero(t, loader.Version())

	table, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, table, loader.Table())
	assert.NotZero(t, loader.Version())
}

func TestLoader_InvalidFileKeepsPreviousTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSources), 0o644))

	loader := NewLoader(path, false, slog.Default())
	_, err := loader.Load()
	require.NoError(t, err)
	good := loader.Table()

	require.NoError(t, os.WriteFile(path, []byte("sources: []"), 0o644))
	_, err = loader.Load()
	assert.Error(t, err)
	assert.Equal(t, good, loader.Table(), "invalid reload must not replace the table")
}

func TestLoader_SubscribeNotifies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSources), 0o644))

	loader := NewLoader(path, false, slog.Default())
	ch := loader.Subscribe()

	_, err := loader.Load()
	require.NoError(t, err)

	select {
	case <-ch:
	default:
		t.Fatal("expected reload notification")
	}
}
