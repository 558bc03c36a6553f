package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("0.2")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 0, Minor: 2}, v)
	assert.Equal(t, "0.2", v.String())

	for _, bad := range []string{"", "1", "1.2.3", "v1.2", "one.two", "1.2-rc1"} {
		_, err = ParseVersion(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestParseArchiveName(t *testing.T) {
	c, err := ParseArchiveName("nipy-data-0.2.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "data", c.LineageName)
	assert.Equal(t, Version{Minor: 2}, c.Version)
	assert.Equal(t, "tar.gz", c.Extension)

	c, err = ParseArchiveName("nipy-templates-1.10.zip")
	require.NoError(t, err)
	assert.Equal(t, "templates", c.LineageName)
	assert.Equal(t, Version{Major: 1, Minor: 10}, c.Version)

	for _, bad := range []string{"nipy-data.tar.gz", "data-0.2.zip", "nipy-data-0.2.rar", "nipy-data-0.2"} {
		_, err = ParseArchiveName(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}
