package model

import (
	"time"
)

const (
	// CurrentDescriptorVersion indicates the version of the build descriptor model
	CurrentDescriptorVersion uint64 = 1
)

// BuildDescriptor records the outcome of one successful lineage build.
//
// It is serialized as yaml next to the archives in the dist directory, so
// a published distribution point carries its own provenance.
type BuildDescriptor struct {
	Lineage          string         `json:"lineage" yaml:"lineage"`
	PackageVersion   string         `json:"packageVersion" yaml:"packageVersion"`
	Timestamp        time.Time      `json:"timestamp" yaml:"timestamp"`
	Archives         []ArchiveEntry `json:"archives" yaml:"archives"`
	ModelVersion     uint64         `json:"modelVersion" yaml:"modelVersion"`
	PayloadFileCount uint64         `json:"count" yaml:"count"`
	_                struct{}
}

// ArchiveEntry describes one archive produced by a build.
type ArchiveEntry struct {
	Name   string `json:"name" yaml:"name"`
	Format string `json:"format" yaml:"format"`
	Size   int64  `json:"size" yaml:"size"`
	Hash   string `json:"hash" yaml:"hash"`
	_      struct{}
}

// DescriptorName yields the descriptor filename for a package,
// e.g. "nipy-data-0.2.build.yaml".
func DescriptorName(pkgName string) string {
	return pkgName + ".build.yaml"
}

// ChecksumName yields the checksum sidecar filename for an archive.
func ChecksumName(archiveName string) string {
	return archiveName + ".blake2b"
}
