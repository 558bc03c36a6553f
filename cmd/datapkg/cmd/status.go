package cmd

import (
	"os"
	"path/filepath"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/nipy/data-packaging/pkg/manifest"
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// statusCmd reports build state without touching anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lineage versions and build output",
	Long:  `Show, for every lineage, the manifest version and the archives currently sitting in dist. Read-only.`,
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()
		table := uitable.New()
		table.AddRow("LINEAGE", "VERSION", "ARCHIVE", "SIZE")

		for _, lin := range model.Lineages() {
			version := lineageVersion(fs, lin)
			rows := distRows(fs, lin)
			if len(rows) == 0 {
				table.AddRow(lin.Name, version, color.HiBlackString("not built"), "")
				continue
			}
			for i, row := range rows {
				name, size := row.name, row.size
				if i == 0 {
					table.AddRow(lin.Name, version, name, size)
				} else {
					table.AddRow("", "", name, size)
				}
			}
		}
		infoLogger.Println(table)
	},
}

type distRow struct {
	name string
	size string
}

func lineageVersion(fs afero.Fs, lin model.Lineage) string {
	m, err := manifest.Load(fs, filepath.Join(params.root.workspace, lin.ManifestPath()))
	if err != nil {
		return color.HiBlackString("no manifest")
	}
	return m.Version.String()
}

func distRows(fs afero.Fs, lin model.Lineage) []distRow {
	dist := filepath.Join(params.root.workspace, lin.DistPath())
	entries, err := afero.ReadDir(fs, dist)
	if err != nil {
		if !os.IsNotExist(err) {
			wrapFatalln("read "+dist, err)
		}
		return nil
	}
	rows := make([]distRow, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		rows = append(rows, distRow{name: fi.Name(), size: units.HumanSize(float64(fi.Size()))})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
