package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datapkg",
	Short: "datapkg packages and publishes nipy data distributions",
	Long: `datapkg manages the build and publish lifecycle of the nipy distribution
lineages: templates (nipy-templates) and data (nipy-data).

Each lineage directory holds a payload tree (normally an operator created
symlink pointing outside the repository) with a config.ini manifest at its
root. Building packages the payload into versioned archives under the
lineage dist directory; publishing pushes those archives to the public
distribution host.

Building and publishing are separate steps on purpose: inspect a build
before it goes public.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	addLogLevel(rootCmd)
	addWorkspaceFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("formats", []string{"gztar"})
	if os.Getenv("DATAPKG_CONFIG") != "" {
		// Use config file from the environment.
		viper.SetConfigFile(os.Getenv("DATAPKG_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.datapkg")
		viper.AddConfigPath("/etc/datapkg")
		viper.SetConfigName("datapkg")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setPackagingParams(&params)
}
