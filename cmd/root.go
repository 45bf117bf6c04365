package cmd

import (
	"fmt"
	"os"

	"github.com/nanw1103/yumako/internal/logging"
	"github.com/nanw1103/yumako/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
	noColor      bool
	quiet        bool

	// render is the global renderer for all output
	render *ui.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "yumako",
	Short: "Everyday utilities for scripts and small tools",
	Long: `yumako - a toolbox of everyday utilities: human-friendly time parsing,
a persistent state file, a file-backed key-value store, template
rendering, command output caching, and a small Redis-protocol cache
server.

Configuration:
  Create ~/.yumako.yaml (or ./.yumako.yaml) to set defaults:

    output: text            # text, json, csv
    state_file: .state      # where 'yumako state' keeps its data
    store_dir: .yumako-store
    store_format: json      # json, yaml, text
    cache_dir: .yumako-cache
    log_level: info         # debug, info, warn, error

  Every key can also be set with a YUMAKO_ environment variable,
  e.g. YUMAKO_STATE_FILE=/tmp/app.state.

Examples:
  # Parse a human time expression
  yumako time of "-2h30m"

  # Remember a value between runs
  yumako state set cursor 12345
  yumako state get cursor

  # Store a document and list the store
  yumako store set greeting '{"text": "hello"}'
  yumako store list

  # Render a template
  yumako render message.tmpl --var name=world

  # Cache a slow command's output for an hour
  yumako cached --ttl 1h -- du -sh /var/log

  # Serve a store directory to redis-cli
  yumako serve --dir ./data`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig, initRenderer, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.yumako.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, csv")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress status messages")

	// Bind flags to viper
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initRenderer initializes the global renderer with current settings.
func initRenderer() {
	render = ui.NewRendererWithOptions(
		ui.WithNoColor(noColor || os.Getenv("NO_COLOR") != ""),
		ui.WithQuiet(quiet),
	)
}

// initLogging applies the configured log level to the default logger.
// The verbose flag wins over the config file.
func initLogging() {
	if IsVerbose() {
		logging.Default().SetLevel(logging.LevelDebug)
		return
	}
	if name := viper.GetString("log_level"); name != "" {
		level, err := logging.ParseLevel(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			return
		}
		logging.Default().SetLevel(level)
	}
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

// Debugf prints a debug message if verbose mode is enabled
func Debugf(format string, args ...interface{}) {
	if IsVerbose() {
		render.Debug(format, args...)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			// Also check ~/.yumako/ directory
			viper.AddConfigPath(home + "/.yumako")
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".yumako")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("YUMAKO")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("output", "text")
	viper.SetDefault("state_file", ".state")
	viper.SetDefault("store_dir", ".yumako-store")
	viper.SetDefault("store_format", "json")
	viper.SetDefault("cache_dir", ".yumako-cache")

	// Read config file (ignore if not found, warn on other errors)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}
}

// getOutputFormat returns the output format from flags or config.
func getOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return viper.GetString("output")
}
