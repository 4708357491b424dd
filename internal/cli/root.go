// Package cli implements the ubidoc command line.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ubidoc",
	Short: "Build a ubiquitous language glossary from source comments",
	Long: `ubidoc reads documentation comments on classes, interfaces, traits,
objects and modules in PHP, Java, Kotlin and Ruby code and collects the
terms tagged with @ubiquitous into a glossary, grouped by @context and
explained by @description.

  /**
   * @ubiquitous Invoice
   * @context Billing
   * @description A bill sent to a customer
   */
  class Invoice {}`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <dir>/.ubidoc/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig lets UBIDOC_CONFIG and UBIDOC_VERBOSE stand in for the global
// flags. Project settings are loaded per command by internal/config.
func initConfig() {
	viper.SetEnvPrefix("UBIDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}
