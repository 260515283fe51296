// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teamradar/github-reports/internal/config"
	"github.com/teamradar/github-reports/internal/gateway"
	"github.com/teamradar/github-reports/internal/usecase"
)

var prsCmd = &cobra.Command{
	Use:   "prs",
	Short: "Lists open pull requests of the configured repositories as JSON",
	Long: `Fetches every open pull request of the repositories in the configuration
file and prints them as JSON, including author, assignees and requested
reviewers.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		log, err := buildLogger(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		cfg := loadConfig(cmd, log)
		token, err := config.Token()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(token, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		lister := usecase.NewRawLister(githubGateway, log)
		prs := lister.List(ctx, cfg.Repositories)

		jsonData, err := json.MarshalIndent(prs, "", "    ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal pull requests to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(prsCmd)
}
