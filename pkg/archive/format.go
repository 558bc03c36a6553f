// Package archive builds and unpacks distribution archives for lineage
// payload trees.
package archive

import (
	"fmt"
	"strings"
)

// Format names follow the sdist convention of the original packaging chain.
type Format string

const (
	// Gztar produces a gzip compressed tarball (.tar.gz)
	Gztar Format = "gztar"

	// Tar produces an uncompressed tarball (.tar)
	Tar Format = "tar"

	// Zip produces a zip archive (.zip)
	Zip Format = "zip"
)

var format2ext = map[Format]string{
	Gztar: "tar.gz",
	Tar:   "tar",
	Zip:   "zip",
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := format2ext[f]; !ok {
		return "", fmt.Errorf("unknown archive format %q (have: gztar, tar, zip)", s)
	}
	return f, nil
}

// ParseFormats validates a list of format names
func ParseFormats(in []string) ([]Format, error) {
	out := make([]Format, 0, len(in))
	for _, s := range in {
		f, err := ParseFormat(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Ext yields the file extension for this format, without leading dot
func (f Format) Ext() string {
	return format2ext[f]
}

func (f Format) String() string {
	return string(f)
}
