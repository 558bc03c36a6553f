package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nipy/data-packaging/pkg/archive"
	"github.com/nipy/data-packaging/pkg/manifest"
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// verify checks a freshly built archive the way a consumer would: unpack
// it in a scratch directory, expect a single top level package directory,
// and re-read the manifest from the unpacked tree.
func (b *Builder) verify(ctx context.Context, lin model.Lineage, archivePath, pkgName string, want model.Version) error {
	scratch, err := afero.TempDir(b.fs, "", "datapkg-verify")
	if err != nil {
		return fmt.Errorf("create scratch directory: %v", err)
	}
	defer func() {
		_ = b.fs.RemoveAll(scratch)
	}()

	if err = archive.Extract(b.fs, archivePath, scratch); err != nil {
		return err
	}

	entries, err := afero.ReadDir(b.fs, scratch)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no directory created by package unpack")
	}
	if len(entries) > 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return fmt.Errorf("expecting only one directory, got %v", names)
	}
	top := entries[0]
	if !top.IsDir() {
		return fmt.Errorf("expecting a directory at archive top level, got file %q", top.Name())
	}
	if top.Name() != pkgName {
		return fmt.Errorf("archive top level %q does not match package %q", top.Name(), pkgName)
	}

	m, err := manifest.Load(b.fs, filepath.Join(scratch, top.Name(), model.ManifestFile))
	if err != nil {
		return fmt.Errorf("unpacked package unreadable: %w", err)
	}
	if m.Version != want {
		return fmt.Errorf("unpacked manifest version %s does not match %s", m.Version, want)
	}

	b.l.Debug("verified archive",
		zap.String("lineage", lin.Name),
		zap.String("archive", archivePath),
	)
	return nil
}
