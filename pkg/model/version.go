package model

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version of a packaged lineage, as declared by its manifest.
//
// nipy package versions are plain major.minor pairs, not full semver.
type Version struct {
	Major uint64 `json:"major" yaml:"major"`
	Minor uint64 `json:"minor" yaml:"minor"`
	_     struct{}
}

var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// ParseVersion parses a "major.minor" version string
func ParseVersion(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("invalid package version %q: want major.minor", s)
	}
	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Version{}, err
	}
	minor, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
