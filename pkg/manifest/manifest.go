// Package manifest reads the config.ini manifest carried by every
// lineage payload tree.
package manifest

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"
	"github.com/nipy/data-packaging/pkg/errors"
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound signals an absent manifest file
	ErrNotFound = errors.New("manifest not found")

	// ErrNoVersion signals a manifest without a version entry
	ErrNoVersion = errors.New("manifest carries no version")
)

// Manifest is the parsed view of a payload config.ini.
//
// Only the version key is interpreted here: everything else in the file
// belongs to the consumers of the published package and passes through
// archives untouched.
type Manifest struct {
	Version model.Version
	_       struct{}
}

// Load reads and validates the manifest at path
func Load(fs afero.Fs, path string) (Manifest, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, ErrNotFound.Wrap(fmt.Errorf("%s: %v", path, err))
		}
		return Manifest{}, fmt.Errorf("read manifest %s: %v", path, err)
	}

	f, err := ini.Load(b)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %v", path, err)
	}

	// nipy manifests keep the version in the DEFAULT section
	raw := f.Section("").Key("version").String()
	if raw == "" {
		return Manifest{}, ErrNoVersion.Wrap(fmt.Errorf("%s has no version key", path))
	}

	v, err := model.ParseVersion(raw)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: %v", path, err)
	}
	return Manifest{Version: v}, nil
}
