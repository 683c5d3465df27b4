package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twsampler",
	Short: "Historical tweet sampler for the full-archive search API",
	Long: `twsampler collects historical tweets matching a stop-word filter over a
year range, one persisted response file per time window.

The year range is partitioned into hourly, daily, weekly, monthly or
yearly windows, each window is fetched with a single full-archive search
request, and responses are written to the output directory. A run may be
interrupted at any point and resumed: windows that already have a
response file are skipped.

The bearer token is resolved from (in order) the --bearer-token flag,
the TWSAMPLER_BEARER_TOKEN environment variable, the config file, or a
stored credential (see 'twsampler auth').`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.twsampler.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`twsampler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
