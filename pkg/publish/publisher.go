// Package publish pushes built archives from a lineage dist directory to
// its distribution point.
//
// Publishing is a deliberately separate step from building, so an operator
// can inspect a build before it reaches the public host. It is strictly
// read-only on the local build output.
package publish

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nipy/data-packaging/pkg/model"
	"github.com/nipy/data-packaging/pkg/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Runner starts the transfer tool and waits for it. Output goes straight
// to the operator; a non-zero exit comes back as the error, untranslated.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Option customizes a Publisher
type Option func(*Publisher)

// WithFs sets the filesystem the workspace lives on
func WithFs(fs afero.Fs) Option {
	return func(p *Publisher) {
		p.fs = fs
	}
}

// Root sets the workspace root holding the lineage directories
func Root(root string) Option {
	return func(p *Publisher) {
		p.root = root
	}
}

// Logger sets the zap logger
func Logger(l *zap.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

// Destination overrides the remote destination for a lineage
func Destination(lineage, dest string) Option {
	return func(p *Publisher) {
		p.dests[lineage] = dest
	}
}

// Mirror additionally uploads archives to an object store
func Mirror(store storage.Store) Option {
	return func(p *Publisher) {
		p.mirror = store
	}
}

// RsyncPath overrides the transfer tool binary
func RsyncPath(pth string) Option {
	return func(p *Publisher) {
		p.rsync = pth
	}
}

// CommandRunner overrides how transfer processes get run
func CommandRunner(r Runner) Option {
	return func(p *Publisher) {
		p.run = r
	}
}

// New builds a Publisher
func New(opts ...Option) *Publisher {
	p := &Publisher{
		fs:    afero.NewOsFs(),
		root:  ".",
		l:     zap.NewNop(),
		rsync: "rsync",
		run:   execRunner,
		dests: make(map[string]string),
	}
	for _, apply := range opts {
		apply(p)
	}
	return p
}

// Publisher synchronizes built archives to remote destinations
type Publisher struct {
	fs     afero.Fs
	root   string
	l      *zap.Logger
	rsync  string
	run    Runner
	dests  map[string]string
	mirror storage.Store
}

// Publish pushes every file in the lineage dist directory to the remote
// destination. An empty or absent dist is an error: there is nothing to
// publish before a successful build.
func (p *Publisher) Publish(ctx context.Context, lin model.Lineage) error {
	dist := filepath.Join(p.root, lin.DistPath())
	files, err := p.distFiles(dist)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("nothing to publish for %s: %s is empty, run a build first", lin.Name, dist)
	}

	dest := p.dests[lin.Name]
	if dest == "" {
		dest = lin.RemoteDest
	}

	p.l.Info("publishing",
		zap.String("lineage", lin.Name),
		zap.String("destination", dest),
		zap.Int("files", len(files)),
	)

	// archive mode with hardlinks, transfer only what changed
	args := []string{"-aH", "--update"}
	args = append(args, files...)
	args = append(args, dest)
	if err = p.run(ctx, p.rsync, args...); err != nil {
		// the transfer tool's output and exit status are the diagnostic
		return err
	}

	if p.mirror != nil {
		if err = p.mirrorFiles(ctx, lin, files); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) distFiles(dist string) ([]string, error) {
	entries, err := afero.ReadDir(p.fs, dist)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dist %s: %v", dist, err)
	}
	files := make([]string, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dist, fi.Name()))
	}
	return files, nil
}

func (p *Publisher) mirrorFiles(ctx context.Context, lin model.Lineage, files []string) error {
	for _, pth := range files {
		f, err := p.fs.Open(pth)
		if err != nil {
			return err
		}
		key := lin.Name + "/" + filepath.Base(pth)
		err = p.mirror.Put(ctx, key, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("mirror %s to %s: %w", pth, p.mirror, err)
		}
		p.l.Debug("mirrored archive", zap.String("key", key), zap.String("store", p.mirror.String()))
	}
	return nil
}
