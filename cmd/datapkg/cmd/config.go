package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// keep field names aligned with the serialized names for viper
	LogLevel string            `json:"loglevel" yaml:"loglevel" mapstructure:"loglevel"`
	Formats  []string          `json:"formats" yaml:"formats" mapstructure:"formats"`
	Packager string            `json:"packager" yaml:"packager" mapstructure:"packager"`
	Remotes  map[string]string `json:"remotes" yaml:"remotes" mapstructure:"remotes"`
	Mirror   MirrorConfig      `json:"mirror" yaml:"mirror" mapstructure:"mirror"`
}

// MirrorConfig describes the optional S3 mirror for published archives.
type MirrorConfig struct {
	Bucket string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

func newConfig() (*CLIConfig, error) {
	var c CLIConfig
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// setPackagingParams fills flag defaults from the configuration, flags win
func (c *CLIConfig) setPackagingParams(flags *flagsT) {
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if len(flags.build.formats) == 0 {
		flags.build.formats = c.Formats
	}
	if flags.build.packager == "" {
		flags.build.packager = c.Packager
	}
	if flags.publish.bucket == "" {
		flags.publish.bucket = c.Mirror.Bucket
	}
	if flags.publish.prefix == "" {
		flags.publish.prefix = c.Mirror.Prefix
	}
}
