// Package builder drives the build lifecycle of distribution lineages:
// clean the previous build output, package and validate the payload tree,
// and leave the resulting archives in the lineage dist directory.
//
// Builds are never incremental. A build always starts by removing the dist
// directory, so a dist directory only ever holds the artifacts of the most
// recent successful build.
package builder

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nipy/data-packaging/pkg/archive"
	"github.com/nipy/data-packaging/pkg/fingerprint"
	"github.com/nipy/data-packaging/pkg/manifest"
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"
)

// Option customizes a Builder
type Option func(*Builder)

// WithFs sets the filesystem the workspace lives on
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

// Root sets the workspace root holding the lineage directories
func Root(root string) Option {
	return func(b *Builder) {
		b.root = root
	}
}

// Formats sets the archive formats produced by a build
func Formats(formats ...archive.Format) Option {
	return func(b *Builder) {
		b.formats = formats
	}
}

// Logger sets the zap logger
func Logger(l *zap.Logger) Option {
	return func(b *Builder) {
		b.l = l
	}
}

// ExternalPackager makes builds shell out to the given command instead of
// the native packager. The lineage directory is appended as the last
// argument and the command exit status is the build outcome, untranslated.
func ExternalPackager(argv ...string) Option {
	return func(b *Builder) {
		b.external = argv
	}
}

// CommandRunner overrides how external packager processes get run
func CommandRunner(r Runner) Option {
	return func(b *Builder) {
		b.run = r
	}
}

// New builds a Builder
func New(opts ...Option) *Builder {
	b := &Builder{
		fs:      afero.NewOsFs(),
		root:    ".",
		formats: []archive.Format{archive.Gztar},
		l:       zap.NewNop(),
		run:     execRunner,
	}
	for _, apply := range opts {
		apply(b)
	}
	b.maker = fingerprint.New(fingerprint.WithFs(b.fs))
	return b
}

// Builder packages lineages
type Builder struct {
	fs       afero.Fs
	root     string
	formats  []archive.Format
	l        *zap.Logger
	external []string
	run      Runner
	maker    *fingerprint.Maker
}

// Clean removes the lineage dist directory.
//
// A missing dist directory is not an error, so Clean is idempotent. Any
// other filesystem error (permissions, ...) is surfaced.
func (b *Builder) Clean(ctx context.Context, lin model.Lineage) error {
	dist := filepath.Join(b.root, lin.DistPath())
	if err := b.fs.RemoveAll(dist); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clean %s: %v", dist, err)
	}
	b.l.Debug("cleaned build output", zap.String("lineage", lin.Name), zap.String("dist", dist))
	return nil
}

// Build packages a lineage from scratch. It always cleans first: no stale
// artifact from a previous build survives in dist. On failure the dist
// directory is removed again, so a failed build leaves no output behind.
func (b *Builder) Build(ctx context.Context, lin model.Lineage) (desc *model.BuildDescriptor, err error) {
	if err = b.Clean(ctx, lin); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = b.fs.RemoveAll(filepath.Join(b.root, lin.DistPath()))
		}
	}()

	if len(b.external) > 0 {
		return b.buildExternal(ctx, lin)
	}
	return b.buildNative(ctx, lin)
}

// BuildAll builds every lineage in conventional order, stopping at the
// first failure. Lineages share no state: a failure only prevents the
// builds that were still queued behind it.
func (b *Builder) BuildAll(ctx context.Context) ([]*model.BuildDescriptor, error) {
	descs := make([]*model.BuildDescriptor, 0, len(model.Lineages()))
	for _, lin := range model.Lineages() {
		desc, err := b.Build(ctx, lin)
		if err != nil {
			return descs, fmt.Errorf("build %s: %w", lin.Name, err)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

func (b *Builder) buildNative(ctx context.Context, lin model.Lineage) (*model.BuildDescriptor, error) {
	src := filepath.Join(b.root, lin.SourceDir)
	if fi, err := b.fs.Stat(src); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("lineage directory %s missing or not a directory", src)
	}

	m, err := manifest.Load(b.fs, filepath.Join(b.root, lin.ManifestPath()))
	if err != nil {
		return nil, err
	}
	pkgName := lin.PackageName(m.Version)

	payload, err := b.resolvePayload(filepath.Join(b.root, lin.PayloadPath()))
	if err != nil {
		return nil, err
	}

	dist := filepath.Join(b.root, lin.DistPath())
	desc := &model.BuildDescriptor{
		Lineage:        lin.Name,
		PackageVersion: m.Version.String(),
		Timestamp:      time.Now().UTC(),
		ModelVersion:   model.CurrentDescriptorVersion,
	}

	for _, format := range b.formats {
		name := pkgName + "." + format.Ext()
		target := filepath.Join(dist, name)
		b.l.Info("packaging",
			zap.String("lineage", lin.Name),
			zap.String("format", format.String()),
			zap.String("archive", name),
		)

		count, err := archive.Write(b.fs, format, payload, target, pkgName)
		if err != nil {
			return nil, fmt.Errorf("package %s as %s: %w", lin.Name, format, err)
		}
		desc.PayloadFileCount = count

		if err = b.verify(ctx, lin, target, pkgName, m.Version); err != nil {
			return nil, fmt.Errorf("verify %s: %w", name, err)
		}

		entry, err := b.seal(target, name, format)
		if err != nil {
			return nil, err
		}
		desc.Archives = append(desc.Archives, entry)
	}

	if err = b.writeDescriptor(dist, pkgName, desc); err != nil {
		return nil, err
	}
	b.l.Info("built lineage",
		zap.String("lineage", lin.Name),
		zap.String("version", m.Version.String()),
		zap.Int("archives", len(desc.Archives)),
	)
	return desc, nil
}

// seal records the digest sidecar for a built archive
func (b *Builder) seal(target, name string, format archive.Format) (model.ArchiveEntry, error) {
	digest, err := b.maker.Process(target)
	if err != nil {
		return model.ArchiveEntry{}, fmt.Errorf("fingerprint %s: %v", name, err)
	}
	hash := hex.EncodeToString(digest)

	fi, err := b.fs.Stat(target)
	if err != nil {
		return model.ArchiveEntry{}, err
	}

	sidecar := target + ".blake2b"
	sum := fmt.Sprintf("%s  %s\n", hash, name)
	if err = afero.WriteFile(b.fs, sidecar, []byte(sum), 0644); err != nil {
		return model.ArchiveEntry{}, fmt.Errorf("write checksum for %s: %v", name, err)
	}

	return model.ArchiveEntry{
		Name:   name,
		Format: format.String(),
		Size:   fi.Size(),
		Hash:   hash,
	}, nil
}

func (b *Builder) writeDescriptor(dist, pkgName string, desc *model.BuildDescriptor) error {
	buf, err := yaml.Marshal(desc)
	if err != nil {
		return err
	}
	pth := filepath.Join(dist, model.DescriptorName(pkgName))
	if err = afero.WriteFile(b.fs, pth, buf, 0644); err != nil {
		return fmt.Errorf("write build descriptor %s: %v", pth, err)
	}
	return nil
}

// resolvePayload follows the operator created payload symlink when the
// workspace lives on a real filesystem. In-memory filesystems have no
// symlinks and pass through unchanged.
func (b *Builder) resolvePayload(payload string) (string, error) {
	if _, ok := b.fs.(*afero.OsFs); !ok {
		return payload, nil
	}
	resolved, err := filepath.EvalSymlinks(payload)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("payload %s missing: create the data symlink first", payload)
		}
		return "", fmt.Errorf("resolve payload %s: %v", payload, err)
	}
	return resolved, nil
}

func (b *Builder) buildExternal(ctx context.Context, lin model.Lineage) (*model.BuildDescriptor, error) {
	src := filepath.Join(b.root, lin.SourceDir)
	argv := append(append([]string{}, b.external...), src)
	b.l.Info("running external packager",
		zap.String("lineage", lin.Name),
		zap.String("command", strings.Join(argv, " ")),
	)

	if err := b.run(ctx, argv[0], argv[1:]...); err != nil {
		// the packager's own output and exit status are the diagnostic
		return nil, err
	}
	return b.scanDist(lin)
}

// scanDist builds a descriptor from whatever archives an external packager
// left in dist. Finding none is a failure: the packager contract is to
// populate dist on success.
func (b *Builder) scanDist(lin model.Lineage) (*model.BuildDescriptor, error) {
	dist := filepath.Join(b.root, lin.DistPath())
	entries, err := afero.ReadDir(b.fs, dist)
	if err != nil {
		return nil, fmt.Errorf("external packager left no dist directory for %s: %v", lin.Name, err)
	}

	desc := &model.BuildDescriptor{
		Lineage:      lin.Name,
		Timestamp:    time.Now().UTC(),
		ModelVersion: model.CurrentDescriptorVersion,
	}
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		c, err := model.ParseArchiveName(fi.Name())
		if err != nil {
			continue
		}
		desc.PackageVersion = c.Version.String()
		desc.Archives = append(desc.Archives, model.ArchiveEntry{
			Name: fi.Name(),
			Size: fi.Size(),
		})
	}
	if len(desc.Archives) == 0 {
		return nil, fmt.Errorf("could not find expected archive in %s", dist)
	}
	return desc, nil
}
