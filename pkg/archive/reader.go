package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Extract unpacks the archive at archivePath into todir, creating
// directories as needed. The archive kind is taken from the filename
// extension.
func Extract(fs afero.Fs, archivePath, todir string) error {
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		return extractZip(fs, archivePath, todir)
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tar"):
		return extractTar(fs, archivePath, todir)
	default:
		return fmt.Errorf("unknown archive kind for %q", archivePath)
	}
}

// entryPath keeps extracted entries inside todir
func entryPath(todir, name string) (string, error) {
	out := filepath.Join(todir, filepath.FromSlash(name))
	if !strings.HasPrefix(out, filepath.Clean(todir)+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return out, nil
}

func writeEntry(fs afero.Fs, pth string, r io.Reader) error {
	if err := fs.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		return err
	}
	f, err := fs.Create(pth)
	if err != nil {
		return err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("extract %q: %v", pth, err)
	}
	return f.Close()
}

func extractZip(fs afero.Fs, archivePath, todir string) error {
	b, err := afero.ReadFile(fs, archivePath)
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return fmt.Errorf("open zip %q: %v", archivePath, err)
	}
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		pth, err := entryPath(todir, entry.Name)
		if err != nil {
			return err
		}
		r, err := entry.Open()
		if err != nil {
			return err
		}
		err = writeEntry(fs, pth, r)
		_ = r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTar(fs afero.Fs, archivePath, todir string) error {
	f, err := fs.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(archivePath, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open tarball %q: %v", archivePath, err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tarball %q: %v", archivePath, err)
		}
		if hdr.Typeflag == tar.TypeDir {
			continue
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		pth, err := entryPath(todir, hdr.Name)
		if err != nil {
			return err
		}
		if err = writeEntry(fs, pth, tr); err != nil {
			return err
		}
	}
}
