// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamradar/github-reports/internal/config"
	"github.com/teamradar/github-reports/internal/gateway"
	"github.com/teamradar/github-reports/internal/render"
	"github.com/teamradar/github-reports/internal/usecase"
)

var commitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Reports commit counts per repository for the last full months",
	Long: `Counts the commits of every configured repository across the last full
calendar months and writes an HTML report with per-month counts and the
mean count per month.`,
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

		months, _ := cmd.Flags().GetInt("months")
		out, _ := cmd.Flags().GetString("out")

		githubGateway, err := gateway.NewGitHubGateway(token, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		reporter := usecase.NewCommitReporter(githubGateway, log)
		reports := reporter.Build(ctx, cfg.Repositories, months)

		html, err := render.CommitsHTML(reports, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render commits report: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(out, html, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write commits report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Report generated: %s\n", out)
	},
}

func init() {
	rootCmd.AddCommand(commitsCmd)
	commitsCmd.Flags().Int("months", 3, "Number of full calendar months to report")
	commitsCmd.Flags().String("out", "github_commits_report.html", "Path for the HTML report file")
}
