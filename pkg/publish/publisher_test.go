package publish

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nipy/data-packaging/pkg/model"
	"github.com/nipy/data-packaging/pkg/storage/localfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDist(t testing.TB) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	dist := model.Data.DistPath()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dist, "nipy-data-0.2.tar.gz"), []byte("archive"), 0644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dist, "nipy-data-0.2.tar.gz.blake2b"), []byte("digest  nipy-data-0.2.tar.gz\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dist, "nipy-data-0.2.build.yaml"), []byte("lineage: data\n"), 0644))
	return fs
}

type runnerRecorder struct {
	name string
	args []string
	err  error
}

func (r *runnerRecorder) run(ctx context.Context, name string, args ...string) error {
	r.name = name
	r.args = args
	return r.err
}

func TestPublish(t *testing.T) {
	fs := setupDist(t)
	rec := &runnerRecorder{}
	p := New(WithFs(fs), CommandRunner(rec.run))

	require.NoError(t, p.Publish(context.Background(), model.Data))

	assert.Equal(t, "rsync", rec.name)
	require.NotEmpty(t, rec.args)
	assert.Equal(t, []string{"-aH", "--update"}, rec.args[:2])
	assert.Equal(t, model.Data.RemoteDest, rec.args[len(rec.args)-1])
	assert.Contains(t, rec.args, filepath.Join(model.Data.DistPath(), "nipy-data-0.2.tar.gz"))
}

func TestPublishDestinationOverride(t *testing.T) {
	fs := setupDist(t)
	rec := &runnerRecorder{}
	p := New(WithFs(fs),
		CommandRunner(rec.run),
		Destination("data", "mirror.example.org:/srv/dist/data"),
		RsyncPath("/opt/bin/rsync"),
	)

	require.NoError(t, p.Publish(context.Background(), model.Data))
	assert.Equal(t, "/opt/bin/rsync", rec.name)
	assert.Equal(t, "mirror.example.org:/srv/dist/data", rec.args[len(rec.args)-1])
}

func TestPublishReadOnlyOnDist(t *testing.T) {
	fs := setupDist(t)
	before := distListing(t, fs)

	p := New(WithFs(fs), CommandRunner((&runnerRecorder{}).run))
	require.NoError(t, p.Publish(context.Background(), model.Data))

	assert.Equal(t, before, distListing(t, fs))
}

func TestPublishEmptyDist(t *testing.T) {
	fs := afero.NewMemMapFs()
	rec := &runnerRecorder{}
	p := New(WithFs(fs), CommandRunner(rec.run))

	err := p.Publish(context.Background(), model.Templates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to publish")
	assert.Empty(t, rec.name, "transfer tool must not run with nothing to publish")
}

func TestPublishTransferFailure(t *testing.T) {
	fs := setupDist(t)
	bang := errors.New("exit status 23")
	rec := &runnerRecorder{err: bang}
	p := New(WithFs(fs), CommandRunner(rec.run))

	err := p.Publish(context.Background(), model.Data)
	require.Error(t, err)
	// the transfer tool's failure comes back untranslated
	assert.Equal(t, bang, err)
}

func TestPublishMirror(t *testing.T) {
	fs := setupDist(t)
	mirrorFs := afero.NewMemMapFs()
	store := localfs.New(mirrorFs)

	p := New(WithFs(fs), CommandRunner((&runnerRecorder{}).run), Mirror(store))
	require.NoError(t, p.Publish(context.Background(), model.Data))

	ctx := context.Background()
	has, err := store.Has(ctx, "data/nipy-data-0.2.tar.gz")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = store.Has(ctx, "data/nipy-data-0.2.build.yaml")
	require.NoError(t, err)
	assert.True(t, has)
}

func distListing(t testing.TB, fs afero.Fs) map[string]int64 {
	t.Helper()
	entries, err := afero.ReadDir(fs, model.Data.DistPath())
	require.NoError(t, err)
	out := make(map[string]int64, len(entries))
	for _, e := range entries {
		out[e.Name()] = e.Size()
	}
	return out
}
