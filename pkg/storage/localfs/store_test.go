package localfs

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/nipy/data-packaging/pkg/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t testing.TB) storage.Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/nipy-data-0.2.tar.gz", []byte("archive bytes"), 0644))
	require.NoError(t, afero.WriteFile(fs, "templates/nipy-templates-0.3.zip", []byte("more archive bytes"), 0644))
	return New(fs)
}

func TestHas(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	has, err := bs.Has(ctx, "data/nipy-data-0.2.tar.gz")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(ctx, "data/nipy-data-0.1.tar.gz")
	require.NoError(t, err)
	require.False(t, has)
}

func TestGet(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	rdr, err := bs.Get(ctx, "data/nipy-data-0.2.tar.gz")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "archive bytes", string(b))

	_, err = bs.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, storage.ErrNotFound, err)
}

func TestPut(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	err := bs.Put(ctx, "data/nipy-data-0.3.tar.gz", bytes.NewBufferString("fresh build"))
	require.NoError(t, err)

	rdr, err := bs.Get(ctx, "data/nipy-data-0.3.tar.gz")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "fresh build", string(b))
}

func TestPutOverwrites(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	require.NoError(t, bs.Put(ctx, "data/nipy-data-0.2.tar.gz", bytes.NewBufferString("rebuilt")))

	rdr, err := bs.Get(ctx, "data/nipy-data-0.2.tar.gz")
	require.NoError(t, err)
	b, err := ioutil.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "rebuilt", string(b))
}

func TestKeys(t *testing.T) {
	bs := setupStore(t)

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestDelete(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	require.NoError(t, bs.Delete(ctx, "templates/nipy-templates-0.3.zip"))
	keys, _ := bs.Keys(ctx)
	assert.Len(t, keys, 1)

	// deleting an absent key is not an error
	require.NoError(t, bs.Delete(ctx, "templates/nipy-templates-0.3.zip"))
}
