package archive

import (
	"errors"
	"testing"

	"github.com/nipy/data-packaging/internal/rand"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("device full")
}

func setupPayload(t testing.TB) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "nipy-data/data/config.ini", []byte("[DEFAULT]\nversion = 0.2\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "nipy-data/data/t1/brain.nii", rand.Bytes(4096), 0644))
	require.NoError(t, afero.WriteFile(fs, "nipy-data/data/t1/brain.json", []byte(`{"shape": [91, 109, 91]}`), 0644))
	return fs
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("gztar")
	require.NoError(t, err)
	assert.Equal(t, "tar.gz", f.Ext())

	f, err = ParseFormat(" ZIP ")
	require.NoError(t, err)
	assert.Equal(t, Zip, f)

	_, err = ParseFormat("bztar")
	require.Error(t, err)

	_, err = ParseFormats([]string{"gztar", "rar"})
	require.Error(t, err)
}

func TestWriteExtractRoundTrip(t *testing.T) {
	for _, format := range []Format{Gztar, Tar, Zip} {
		format := format
		t.Run(format.String(), func(t *testing.T) {
			fs := setupPayload(t)

			dest := "nipy-data/dist/nipy-data-0.2." + format.Ext()
			count, err := Write(fs, format, "nipy-data/data", dest, "nipy-data-0.2")
			require.NoError(t, err)
			assert.EqualValues(t, 3, count)

			fi, err := fs.Stat(dest)
			require.NoError(t, err)
			assert.NotZero(t, fi.Size())

			require.NoError(t, Extract(fs, dest, "unpacked"))

			entries, err := afero.ReadDir(fs, "unpacked")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "nipy-data-0.2", entries[0].Name())

			manifest, err := afero.ReadFile(fs, "unpacked/nipy-data-0.2/config.ini")
			require.NoError(t, err)
			assert.Contains(t, string(manifest), "version = 0.2")

			original, err := afero.ReadFile(fs, "nipy-data/data/t1/brain.nii")
			require.NoError(t, err)
			extracted, err := afero.ReadFile(fs, "unpacked/nipy-data-0.2/t1/brain.nii")
			require.NoError(t, err)
			assert.Equal(t, original, extracted)
		})
	}
}

func TestWriteTarSurfacesFlushErrors(t *testing.T) {
	fs := setupPayload(t)

	// gzip holds a small tarball in its compression buffer, so the first
	// write against the destination only happens when the stream closes;
	// the close error must not be swallowed
	_, err := writeTar(fs, brokenWriter{}, "nipy-data/data", "nipy-data-0.2", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device full")
}

func TestWriteMissingPayload(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Write(fs, Gztar, "nipy-data/data", "nipy-data/dist/out.tar.gz", "nipy-data-0.2")
	require.Error(t, err)
}

func TestWritePayloadNotADirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "nipy-data/data", []byte("not a tree"), 0644))

	_, err := Write(fs, Zip, "nipy-data/data", "nipy-data/dist/out.zip", "nipy-data-0.2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestExtractUnknownKind(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pkg.rar", []byte("x"), 0644))

	err := Extract(fs, "pkg.rar", "out")
	require.Error(t, err)
}
