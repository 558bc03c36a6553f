package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// cleanCmd removes build output. Cleaning an already clean lineage is fine.
var cleanCmd = &cobra.Command{
	Use:   "clean [lineage...]",
	Short: "Remove lineage build output",
	Long: `Remove the dist directory of the given lineages (all of them by default).

A lineage without build output is left alone: clean is idempotent.`,
	Args: lineageNames,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		lineages, err := lineagesFromArgs(args)
		if err != nil {
			wrapFatalln("resolve lineages", err)
			return
		}
		b, err := paramsToBuilder()
		if err != nil {
			wrapFatalln("configure builder", err)
			return
		}
		for _, lin := range lineages {
			if err = b.Clean(ctx, lin); err != nil {
				wrapFatalln("clean "+lin.Name, err)
				return
			}
			infoLogger.Printf("cleaned %s", lin.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
