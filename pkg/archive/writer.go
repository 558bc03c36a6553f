package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Write archives the tree rooted at sourceDir into destPath, placing every
// entry under a single top level directory named prefix. It returns the
// number of files archived.
//
// Entry order is the walk order of the source tree, so identical trees
// produce identical archives (modulo file timestamps).
func Write(fs afero.Fs, format Format, sourceDir, destPath, prefix string) (uint64, error) {
	fi, err := fs.Stat(sourceDir)
	if err != nil {
		return 0, fmt.Errorf("stat payload %s: %v", sourceDir, err)
	}
	if !fi.IsDir() {
		return 0, fmt.Errorf("payload %s is not a directory", sourceDir)
	}

	if err = fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("ensuring directories for %q: %v", destPath, err)
	}
	target, err := fs.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("create archive %q: %v", destPath, err)
	}

	var count uint64
	switch format {
	case Zip:
		count, err = writeZip(fs, target, sourceDir, prefix)
	case Tar, Gztar:
		count, err = writeTar(fs, target, sourceDir, prefix, format == Gztar)
	default:
		err = fmt.Errorf("unknown archive format %q", format)
	}
	if err != nil {
		_ = target.Close()
		_ = fs.Remove(destPath)
		return 0, err
	}
	if err = target.Close(); err != nil {
		return 0, err
	}
	return count, nil
}

// walkPayload visits regular files under sourceDir, handing the archive
// entry name and an open stat to the callback. Symlinked files resolve
// through fs.Stat and are archived as regular content, matching how the
// original packaging chain materialized links.
func walkPayload(fs afero.Fs, sourceDir, prefix string, visit func(name string, fi os.FileInfo, pth string) error) (uint64, error) {
	var count uint64
	err := afero.Walk(fs, sourceDir, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		fi, err := fs.Stat(pth)
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, pth)
		if err != nil {
			return err
		}
		count++
		return visit(path.Join(prefix, filepath.ToSlash(rel)), fi, pth)
	})
	return count, err
}

func writeTar(fs afero.Fs, w io.Writer, sourceDir, prefix string, compress bool) (uint64, error) {
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(w)
		w = gz
	}
	tw := tar.NewWriter(w)

	count, err := walkPayload(fs, sourceDir, prefix, func(name string, fi os.FileInfo, pth string) error {
		hdr := &tar.Header{
			Name:    name,
			Mode:    int64(fi.Mode().Perm()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header for %q: %v", name, err)
		}
		src, err := fs.Open(pth)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err = io.Copy(tw, src); err != nil {
			return fmt.Errorf("archive %q: %v", name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err = tw.Close(); err != nil {
		return 0, err
	}
	if gz != nil {
		// a flush failure here means a truncated tarball on disk
		if err = gz.Close(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func writeZip(fs afero.Fs, w io.Writer, sourceDir, prefix string) (uint64, error) {
	zw := zip.NewWriter(w)

	count, err := walkPayload(fs, sourceDir, prefix, func(name string, fi os.FileInfo, pth string) error {
		hdr, err := zip.FileInfoHeader(fi)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		dst, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("write header for %q: %v", name, err)
		}
		src, err := fs.Open(pth)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err = io.Copy(dst, src); err != nil {
			return fmt.Errorf("archive %q: %v", name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, zw.Close()
}
