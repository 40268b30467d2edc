package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sondalab/sonda/internal/sat"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOptions_PartialOverlay(t *testing.T) {
	path := writeConfig(t, "probing: limit: 100\n")

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	defaults := sat.DefaultOptions()
	assert.Equal(t, 100, opts.Probing.Limit)
	assert.Equal(t, defaults.Probing.Cache, opts.Probing.Cache)
	assert.Equal(t, defaults.Probing.CacheLimit, opts.Probing.CacheLimit)
	assert.Equal(t, defaults.Seed, opts.Seed)
}

func TestLoadOptions_AllFields(t *testing.T) {
	path := writeConfig(t, `
seed: 42
probing: {
	enabled:        false
	limit:          12345
	cache:          false
	cache_limit_mb: 2
	binary:         false
	equivalences:   true
}
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), opts.Seed)
	assert.False(t, opts.Probing.Enabled)
	assert.Equal(t, 12345, opts.Probing.Limit)
	assert.False(t, opts.Probing.Cache)
	assert.Equal(t, uint64(2<<20), opts.Probing.CacheLimit)
	assert.False(t, opts.Probing.Binary)
	assert.True(t, opts.Probing.Equivalences)
}

func TestLoadOptions_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, sat.DefaultOptions(), opts)
}

func TestLoadOptions_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "config", "unknown_field.cue")

	_, err := LoadOptions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limt")
}

func TestLoadOptions_NegativeLimitRejected(t *testing.T) {
	path := writeConfig(t, "probing: limit: -5\n")

	_, err := LoadOptions(path)
	assert.Error(t, err)
}

func TestLoadOptions_WrongTypeRejected(t *testing.T) {
	path := writeConfig(t, `probing: limit: "lots"` + "\n")

	_, err := LoadOptions(path)
	assert.Error(t, err)
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "absent.cue"))
	assert.Error(t, err)
}

func TestLoadOptions_Fixture(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "config", "probing.cue")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), opts.Seed)
	assert.Equal(t, 200000, opts.Probing.Limit)
	assert.Equal(t, uint64(64<<20), opts.Probing.CacheLimit)
	assert.True(t, opts.Probing.Equivalences)
	assert.True(t, opts.Probing.Enabled, "absent fields keep their defaults")
}
