package model

import (
	"fmt"
	"path/filepath"
)

const (
	// DistDir is the per lineage build output directory, removed on clean
	// and repopulated from scratch on every build.
	DistDir = "dist"

	// ManifestFile is the manifest expected at the root of a lineage payload.
	ManifestFile = "config.ini"
)

// Lineage describes one of the independently packaged distribution families.
//
// A lineage maps to a source directory holding the payload tree (normally an
// operator created symlink) and to a remote destination where built archives
// get published.
type Lineage struct {
	Name       string `json:"name" yaml:"name"`
	SourceDir  string `json:"sourceDir" yaml:"sourceDir"`
	PayloadDir string `json:"payloadDir" yaml:"payloadDir"`
	RemoteDest string `json:"remoteDest" yaml:"remoteDest"`
	_          struct{}
}

var (
	// Templates is the nipy-templates lineage
	Templates = Lineage{
		Name:       "templates",
		SourceDir:  "nipy-templates",
		PayloadDir: "templates",
		RemoteDest: "nipy.org:/var/www/dist/templates",
	}

	// Data is the nipy-data lineage
	Data = Lineage{
		Name:       "data",
		SourceDir:  "nipy-data",
		PayloadDir: "data",
		RemoteDest: "nipy.org:/var/www/dist/data",
	}
)

// Lineages returns all known lineages, in build order.
//
// The order is conventional only: lineages share no state and may be
// built in any order with the same end result.
func Lineages() []Lineage {
	return []Lineage{Templates, Data}
}

// GetLineage resolves a lineage by name
func GetLineage(name string) (Lineage, error) {
	for _, l := range Lineages() {
		if l.Name == name {
			return l, nil
		}
	}
	return Lineage{}, fmt.Errorf("unknown lineage %q (have: templates, data)", name)
}

func (l Lineage) String() string {
	return l.Name
}

// DistPath yields the build output directory for this lineage, relative to
// the packaging workspace root.
func (l Lineage) DistPath() string {
	return filepath.Join(l.SourceDir, DistDir)
}

// PayloadPath yields the payload tree for this lineage, relative to the
// packaging workspace root.
func (l Lineage) PayloadPath() string {
	return filepath.Join(l.SourceDir, l.PayloadDir)
}

// ManifestPath yields the expected manifest location inside the payload tree.
func (l Lineage) ManifestPath() string {
	return filepath.Join(l.PayloadPath(), ManifestFile)
}

// PackageName yields the distribution name for a built package,
// e.g. "nipy-data-0.2".
func (l Lineage) PackageName(v Version) string {
	return fmt.Sprintf("nipy-%s-%s", l.Name, v)
}
