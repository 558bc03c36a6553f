package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// publishCmd pushes built archives to the distribution host. Deliberately
// never part of the build: a build gets inspected before it goes public.
var publishCmd = &cobra.Command{
	Use:   "publish [lineage...]",
	Short: "Publish built archives to the distribution host",
	Long: `Synchronize the dist directory of the given lineages (all of them by
default) to their remote destination, transferring only what changed.

Publishing reads the local build output and never modifies it. It fails
when a lineage has no build output.`,
	Args: lineageNames,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		lineages, err := lineagesFromArgs(args)
		if err != nil {
			wrapFatalln("resolve lineages", err)
			return
		}
		p, err := paramsToPublisher(lineages)
		if err != nil {
			wrapFatalln("configure publisher", err)
			return
		}
		for _, lin := range lineages {
			if err = p.Publish(ctx, lin); err != nil {
				wrapFatalln("publish "+lin.Name, err)
				return
			}
			infoLogger.Printf("published %s", lin.Name)
		}
	},
}

func init() {
	addDestFlag(publishCmd)
	addMirrorFlags(publishCmd)
	rootCmd.AddCommand(publishCmd)
}
