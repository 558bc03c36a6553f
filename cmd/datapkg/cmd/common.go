package cmd

import (
	"strings"

	"github.com/nipy/data-packaging/pkg/archive"
	"github.com/nipy/data-packaging/pkg/builder"
	"github.com/nipy/data-packaging/pkg/dlogger"
	"github.com/nipy/data-packaging/pkg/model"
	"github.com/nipy/data-packaging/pkg/publish"
	"github.com/nipy/data-packaging/pkg/storage/sthree"
	"go.uber.org/zap"
)

func paramsToLogger() (*zap.Logger, error) {
	lvl := params.root.logLevel
	if lvl == "" {
		lvl = dlogger.LogLevelInfo
	}
	return dlogger.GetLogger(lvl)
}

func paramsToBuilder() (*builder.Builder, error) {
	logger, err := paramsToLogger()
	if err != nil {
		return nil, err
	}
	formats, err := archive.ParseFormats(params.build.formats)
	if err != nil {
		return nil, err
	}
	opts := []builder.Option{
		builder.Root(params.root.workspace),
		builder.Formats(formats...),
		builder.Logger(logger),
	}
	if params.build.packager != "" {
		opts = append(opts, builder.ExternalPackager(strings.Fields(params.build.packager)...))
	}
	return builder.New(opts...), nil
}

func paramsToPublisher(lineages []model.Lineage) (*publish.Publisher, error) {
	logger, err := paramsToLogger()
	if err != nil {
		return nil, err
	}
	opts := []publish.Option{
		publish.Root(params.root.workspace),
		publish.Logger(logger),
	}
	if config != nil {
		for name, dest := range config.Remotes {
			opts = append(opts, publish.Destination(name, dest))
		}
	}
	if params.publish.dest != "" {
		// an explicit destination applies to every lineage named in this invocation
		for _, lin := range lineages {
			opts = append(opts, publish.Destination(lin.Name, params.publish.dest))
		}
	}
	if params.publish.mirror {
		store := sthree.New(
			sthree.Bucket(params.publish.bucket),
			sthree.Prefix(params.publish.prefix),
		)
		opts = append(opts, publish.Mirror(store))
	}
	return publish.New(opts...), nil
}
