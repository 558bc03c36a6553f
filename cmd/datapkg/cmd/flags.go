package cmd

import (
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		logLevel  string
		workspace string
	}
	build struct {
		formats  []string
		packager string
	}
	publish struct {
		dest   string
		mirror bool
		bucket string
		prefix string
	}
}

var params flagsT

func addLogLevel(cmd *cobra.Command) string {
	const logLevel = "loglevel"
	cmd.PersistentFlags().StringVar(&params.root.logLevel, logLevel, "",
		"Log level for this command (info, debug or none)")
	return logLevel
}

func addWorkspaceFlag(cmd *cobra.Command) string {
	const workspace = "workspace"
	cmd.PersistentFlags().StringVar(&params.root.workspace, workspace, ".",
		"Directory holding the lineage source directories")
	return workspace
}

func addFormatsFlag(cmd *cobra.Command) string {
	const formats = "format"
	cmd.Flags().StringSliceVar(&params.build.formats, formats, nil,
		"Archive formats to produce (gztar, tar, zip)")
	return formats
}

func addPackagerFlag(cmd *cobra.Command) string {
	const packager = "packager"
	cmd.Flags().StringVar(&params.build.packager, packager, "",
		"External packaging command run as '<packager> <lineage-dir>' instead of the native packager")
	return packager
}

func addDestFlag(cmd *cobra.Command) string {
	const dest = "dest"
	cmd.Flags().StringVar(&params.publish.dest, dest, "",
		"Remote destination (host:path) overriding the lineage default")
	return dest
}

func addMirrorFlags(cmd *cobra.Command) string {
	const mirror = "mirror"
	cmd.Flags().BoolVar(&params.publish.mirror, mirror, false,
		"Also mirror archives to the configured S3 bucket")
	cmd.Flags().StringVar(&params.publish.bucket, "bucket", "",
		"S3 bucket for the mirror")
	cmd.Flags().StringVar(&params.publish.prefix, "prefix", "",
		"Key prefix inside the mirror bucket")
	return mirror
}

// lineagesFromArgs resolves positional lineage names, defaulting to every
// known lineage when none is given.
func lineagesFromArgs(args []string) ([]model.Lineage, error) {
	if len(args) == 0 {
		return model.Lineages(), nil
	}
	out := make([]model.Lineage, 0, len(args))
	for _, name := range args {
		l, err := model.GetLineage(name)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// lineageNames is the cobra args validator for lineage positionals
func lineageNames(cmd *cobra.Command, args []string) error {
	_, err := lineagesFromArgs(args)
	return err
}
