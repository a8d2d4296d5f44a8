// Package cmd wires the notelink CLI: the HTTP server, schema migration,
// and the admin note commands.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notelink/notelink/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// cliLogger is built once per run by cobra's initializer; commands use
	// it for diagnostics, stdout stays reserved for command output.
	cliLogger = zap.NewNop()

	// Version info set by main package via ldflags.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "notelink",
	Short: "Webhook relay and note submission service",
	Long: `notelink relays chat messages to an assistant webhook and runs note
submissions through a validate/rate-gate/sanitize/upload/notify/persist
pipeline backed by libsql.

Use the subcommands to perform specific operations.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initCLILogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults and NOTELINK_ env vars apply without one)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

func initCLILogger() {
	logger, err := observability.NewCLILogger(verbose)
	if err != nil {
		return
	}
	cliLogger = logger
}
