package model

import (
	"fmt"
	"regexp"
)

// archive filenames follow the upstream sdist convention
var archiveNameRe = regexp.MustCompile(`^nipy-(\w+)-(\d+)\.(\d+)\.(zip|tar\.gz|tar)$`)

// ArchiveNameComponents are the parts encoded in a built archive filename.
type ArchiveNameComponents struct {
	LineageName string
	Version     Version
	Extension   string
}

// ParseArchiveName decomposes a built archive filename such as
// "nipy-data-0.2.tar.gz" into its components.
func ParseArchiveName(name string) (ArchiveNameComponents, error) {
	m := archiveNameRe.FindStringSubmatch(name)
	if m == nil {
		return ArchiveNameComponents{}, fmt.Errorf("could not get package name from %q", name)
	}
	v, err := ParseVersion(m[2] + "." + m[3])
	if err != nil {
		return ArchiveNameComponents{}, err
	}
	return ArchiveNameComponents{
		LineageName: m[1],
		Version:     v,
		Extension:   m[4],
	}, nil
}
