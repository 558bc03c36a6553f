package manifest

import (
	"testing"

	"github.com/nipy/data-packaging/pkg/errors"
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t testing.TB, content string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "nipy-data/data/config.ini", []byte(content), 0644))
	return fs
}

func TestLoad(t *testing.T) {
	fs := writeManifest(t, "[DEFAULT]\nversion = 0.2\n")

	m, err := Load(fs, "nipy-data/data/config.ini")
	require.NoError(t, err)
	assert.Equal(t, model.Version{Major: 0, Minor: 2}, m.Version)
}

func TestLoadBareVersion(t *testing.T) {
	// no section header at all, as some hand written manifests do
	fs := writeManifest(t, "version = 1.4\n")

	m, err := Load(fs, "nipy-data/data/config.ini")
	require.NoError(t, err)
	assert.Equal(t, model.Version{Major: 1, Minor: 4}, m.Version)
}

func TestLoadMissing(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Load(fs, "nipy-data/data/config.ini")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadNoVersion(t *testing.T) {
	fs := writeManifest(t, "[DEFAULT]\nname = data\n")

	_, err := Load(fs, "nipy-data/data/config.ini")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoVersion))
}

func TestLoadBadVersion(t *testing.T) {
	fs := writeManifest(t, "[DEFAULT]\nversion = not-a-version\n")

	_, err := Load(fs, "nipy-data/data/config.ini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid package version")
}
