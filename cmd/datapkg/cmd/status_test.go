package cmd

import (
	"testing"

	"github.com/nipy/data-packaging/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestCLIStatus(t *testing.T) {
	rec := patchFatals(t)
	dir := seedWorkspace(t, model.Data, "0.2")

	// before and after a build, status stays read-only and fatal-free
	require.NoError(t, runCmd(t, "status", "--workspace", dir, "--loglevel", "none"))
	require.Empty(t, rec.calls)

	require.NoError(t, runCmd(t, "build", "data", "--workspace", dir, "--loglevel", "none"))
	require.NoError(t, runCmd(t, "status", "--workspace", dir, "--loglevel", "none"))
	require.Empty(t, rec.calls)
}

func TestCLIVersion(t *testing.T) {
	rec := patchFatals(t)
	require.NoError(t, runCmd(t, "version"))
	require.Empty(t, rec.calls)
}
