// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/config"
	"github.com/teamradar/github-reports/internal/gateway"
	"github.com/teamradar/github-reports/internal/render"
	"github.com/teamradar/github-reports/internal/usecase"
)

var reviewersCmd = &cobra.Command{
	Use:   "reviewers",
	Short: "Groups open pull requests by requested reviewer",
	Long: `Groups the open pull requests of the configured repositories by requested
reviewer, restricted to the configured developers. Each pull request is
annotated with whether the reviewer has already given feedback and whether
the pull request has gone stale. The result is printed as JSON and written
to JSON and HTML report files.`,
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

		classifier := usecase.NewClassifier(githubGateway, cfg.StaleDays, log)
		reporter := usecase.NewReviewerReporter(githubGateway, classifier, log)
		reports := reporter.Build(ctx, cfg.Repositories, cfg.Developers)

		jsonData, err := render.ReviewerJSON(reports)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render reviewer report: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))

		// File outputs are best-effort: a write failure is logged, the
		// JSON already went to stdout.
		if outJSON, _ := cmd.Flags().GetString("out-json"); outJSON != "" {
			if err := os.WriteFile(outJSON, jsonData, 0o644); err != nil {
				log.Error("failed to write JSON report", zap.String("path", outJSON), zap.Error(err))
			} else {
				log.Info("PR review data saved", zap.String("path", outJSON))
			}
		}
		if outHTML, _ := cmd.Flags().GetString("out-html"); outHTML != "" {
			html, err := render.ReviewerHTML(reports)
			if err != nil {
				log.Error("failed to render HTML report", zap.Error(err))
			} else if err := os.WriteFile(outHTML, html, 0o644); err != nil {
				log.Error("failed to write HTML report", zap.String("path", outHTML), zap.Error(err))
			} else {
				log.Info("PR review data saved", zap.String("path", outHTML))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(reviewersCmd)
	reviewersCmd.Flags().String("out-json", "reviewers_prs.json", "Path for the JSON report file (empty to disable)")
	reviewersCmd.Flags().String("out-html", "reviewers_prs.html", "Path for the HTML report file (empty to disable)")
}
