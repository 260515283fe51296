// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/config"
	"github.com/teamradar/github-reports/internal/domain"
	"github.com/teamradar/github-reports/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Posts the reviewer report to a Slack webhook",
	Long: `Reads the JSON report produced by the reviewers command and posts a
formatted summary to the configured Slack incoming webhook.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		log, err := buildLogger(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()

		webhookURL, err := config.WebhookURL()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		input, _ := cmd.Flags().GetString("input")
		data, err := os.ReadFile(input)
		if err != nil {
			log.Error("report file not readable", zap.String("path", input), zap.Error(err))
			return
		}
		var reports []domain.ReviewerReport
		if err := json.Unmarshal(data, &reports); err != nil {
			log.Error("report file not parseable", zap.String("path", input), zap.Error(err))
			return
		}
		if len(reports) == 0 {
			log.Error("no valid PR data to post", zap.String("path", input))
			return
		}

		slack := notify.NewSlack(webhookURL, log)
		if err := slack.Post(ctx, reports); err != nil {
			log.Error("failed to post to Slack", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().String("input", "reviewers_prs.json", "Path of the reviewer report JSON file")
}
