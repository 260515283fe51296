// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/config"
	"github.com/teamradar/github-reports/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "github-reports",
	Short: "A CLI tool for GitHub pull request and commit reports.",
	Long: `github-reports turns GitHub repository activity into small batch reports:
open pull requests grouped by requested reviewer (with feedback and
staleness flags), commit counts per calendar month, and a Slack summary
of who still has reviews waiting.`,
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
	// Persistent flags shared by every report job.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Path to the YAML configuration file")
}

// buildLogger constructs the logger shared by every command, honoring the
// persistent --verbose flag.
func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	return logger.New(verbose)
}

// loadConfig reads the YAML configuration named by the persistent
// --config flag.
func loadConfig(cmd *cobra.Command, log *zap.Logger) config.Config {
	path, _ := cmd.InheritedFlags().GetString("config")
	return config.Load(path, log)
}
