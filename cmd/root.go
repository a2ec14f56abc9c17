package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-i2p/intlgo/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var c *config.Conf = &config.Conf{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "intlgo",
	Short: "Expand static site pages into one localized page per language",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.intlgo.yaml)")

	// Plugin options shared by build, plan, and languages.
	rootCmd.PersistentFlags().String("messagesdir", ".", "directory holding one {language}.json/.yaml/.toml message file per language")
	rootCmd.PersistentFlags().StringSlice("languages", []string{"en"}, "languages to generate routed pages for, in order")
	rootCmd.PersistentFlags().String("defaultlanguage", "en", "language served at unprefixed paths")
	rootCmd.PersistentFlags().Bool("redirect", false, "ask the site runtime to redirect browsers to their language")
	// StringArray, not StringSlice: patterns may contain commas.
	rootCmd.PersistentFlags().StringArray("skip", nil, "regular expression of page paths to leave untouched (repeatable)")
	rootCmd.PersistentFlags().String("redirectcomponent", "", "path of the redirect UI component injected into the bundle")
	rootCmd.PersistentFlags().String("builddir", "build", "directory rendered pages are written to and served from")
	rootCmd.PersistentFlags().Bool("verbose", false, "log every created page")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".intlgo" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".intlgo")
	}

	viper.SetEnvPrefix("intlgo")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConf unmarshals viper state into c.
func loadConf() error {
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// newLogger returns the stderr logger every command shares.
func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "intlgo",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}
