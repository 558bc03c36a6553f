package cmd

import (
	"context"

	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/cobra"
)

// buildCmd rebuilds lineages from scratch.
var buildCmd = &cobra.Command{
	Use:     "build [lineage...]",
	Aliases: []string{"all"},
	Short:   "Build lineage archives",
	Long: `Package the given lineages (all of them by default) into versioned
archives under their dist directory.

A build always cleans first: dist only ever holds the artifacts of the most
recent successful build. Building stops at the first failing lineage.

By default the native packager validates the payload manifest, archives the
payload tree and verifies the produced archives by unpacking them. With
--packager set, the external command runs instead, as
'<packager> <lineage-dir>', and its exit status decides the build outcome.`,
	Args: lineageNames,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		b, err := paramsToBuilder()
		if err != nil {
			wrapFatalln("configure builder", err)
			return
		}

		if len(args) == 0 {
			// fail-fast ordering lives in the builder
			descs, err := b.BuildAll(ctx)
			if err != nil {
				wrapFatalln("build", err)
				return
			}
			reportBuilds(descs)
			return
		}

		lineages, err := lineagesFromArgs(args)
		if err != nil {
			wrapFatalln("resolve lineages", err)
			return
		}
		for _, lin := range lineages {
			desc, err := b.Build(ctx, lin)
			if err != nil {
				wrapFatalln("build "+lin.Name, err)
				return
			}
			reportBuilds([]*model.BuildDescriptor{desc})
		}
	},
}

func reportBuilds(descs []*model.BuildDescriptor) {
	for _, desc := range descs {
		for _, entry := range desc.Archives {
			infoLogger.Printf("built %s (%d bytes)", entry.Name, entry.Size)
		}
	}
}

func init() {
	addFormatsFlag(buildCmd)
	addPackagerFlag(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
