package configsource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecli.dev/argspec/configsource"
	"forgecli.dev/argspec/describe"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
)

func TestResolveEnv(t *testing.T) {
	t.Parallel()

	lookup := func(name string) (string, bool) {
		if name == "API_KEY" {
			return "secret", true
		}

		return "", false
	}

	r := configsource.New(configsource.WithEnvLookup(lookup))

	val, found, err := r.Resolve(context.Background(), "--key", []string{"API_KEY"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "secret", val)
}

func TestResolveEnvMiss(t *testing.T) {
	t.Parallel()

	r := configsource.New(configsource.WithEnvLookup(func(string) (string, bool) { return "", false }))

	_, found, err := r.Resolve(context.Background(), "--key", []string{"NOPE"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveYAMLFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: db.internal\n"), 0o644))

	r := configsource.New()

	val, found, err := r.Resolve(context.Background(), "database.host", []string{"file://" + path})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "db.internal", val)
}

func TestResolveYAMLFileMissingKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: db.internal\n"), 0o644))

	r := configsource.New()

	_, found, err := r.Resolve(context.Background(), "database.port", []string{"file://" + path})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveDotenvFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	require.NoError(t, os.WriteFile(path, []byte("OUT_DIR=/tmp/build\n"), 0o644))

	r := configsource.New()

	val, found, err := r.Resolve(context.Background(), "--out-dir", []string{"file://" + path})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/tmp/build", val)
}

func TestResolveMissingFileIsNotFound(t *testing.T) {
	t.Parallel()

	r := configsource.New()

	_, found, err := r.Resolve(context.Background(), "x", []string{"file:///does/not/exist.yaml"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveWithShapeCheckRejectsMismatch(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("port", &schema.Single{
		Common:    schema.Common{Names: []string{"--port"}},
		Selection: schema.Selection{Regex: `^[0-9]+$`},
	})
	shape := describe.Schema(registry.Build(s))

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: not-a-number\n"), 0o644))

	r := configsource.New(configsource.WithShapeCheck(shape))

	_, _, err := r.Resolve(context.Background(), "port", []string{"file://" + path})
	require.Error(t, err)
	assert.ErrorIs(t, err, configsource.ErrInvalidSource)
}

func TestResolveWithShapeCheckAcceptsMatch(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("port", &schema.Single{
		Common:    schema.Common{Names: []string{"--port"}},
		Selection: schema.Selection{Regex: `^[0-9]+$`},
	})
	shape := describe.Schema(registry.Build(s))

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"8080\"\n"), 0o644))

	r := configsource.New(configsource.WithShapeCheck(shape))

	val, found, err := r.Resolve(context.Background(), "port", []string{"file://" + path})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "8080", val)
}

func TestResolveFallsThroughToNextSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: fromfile\n"), 0o644))

	lookup := func(string) (string, bool) { return "", false }
	r := configsource.New(configsource.WithEnvLookup(lookup))

	val, found, err := r.Resolve(context.Background(), "host", []string{"MISSING_ENV", "file://" + path})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fromfile", val)
}
