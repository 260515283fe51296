// Package notify delivers reviewer reports to a Slack incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry-go"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/domain"
)

const (
	maxPostAttempts  = 3
	initialPostDelay = 500 * time.Millisecond
)

// block is one element of a Slack Block Kit message.
type block struct {
	Type string     `json:"type"`
	Text *blockText `json:"text,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// message is the webhook payload: either a plain-text fallback or a list
// of blocks.
type message struct {
	Text   string  `json:"text,omitempty"`
	Blocks []block `json:"blocks,omitempty"`
}

// clientError marks a 4xx webhook response, which a retry cannot fix.
type clientError struct {
	status int
	body   string
}

func (e *clientError) Error() string {
	return fmt.Sprintf("slack webhook rejected the message: status %d: %s", e.status, e.body)
}

// Slack posts reviewer reports to an incoming webhook.
type Slack struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
	attempts   uint
	delay      time.Duration
}

// NewSlack creates a new Slack notifier for the given webhook URL.
func NewSlack(webhookURL string, logger *zap.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		attempts:   maxPostAttempts,
		delay:      initialPostDelay,
	}
}

// Post formats the reports as a Block Kit message and delivers it to the
// webhook. Transient failures (5xx, transport errors) are retried with
// exponential backoff and jitter; a 4xx response ends the delivery
// immediately.
func (s *Slack) Post(ctx context.Context, reports []domain.ReviewerReport) error {
	payload, err := json.Marshal(buildMessage(reports))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	err = retry.Do(
		func() error { return s.post(ctx, payload) },
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(s.delay/4),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Slack post failed, retrying",
				zap.Uint("attempt", n+1), zap.Uint("max_attempts", s.attempts), zap.Error(err))
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ce *clientError
			return !errors.As(err, &ce)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to post to Slack: %w", err)
	}
	s.logger.Info("posted review summary to Slack")
	return nil
}

// post performs one webhook delivery attempt.
func (s *Slack) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &clientError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// buildMessage renders the reports as a Block Kit message: a summary
// header, then one mrkdwn section with linked pull requests per
// developer, each followed by a divider. Developers with nothing to
// review are skipped; an empty report becomes a plain-text notice.
func buildMessage(reports []domain.ReviewerReport) message {
	if len(reports) == 0 {
		return message{Text: "No PRs found for reviewers."}
	}

	blocks := []block{{
		Type: "section",
		Text: &blockText{Type: "mrkdwn", Text: "*GitHub PR Review Summary* 📢"},
	}}
	for _, report := range reports {
		if len(report.PullRequests) == 0 {
			continue
		}
		lines := make([]string, 0, len(report.PullRequests))
		for _, pr := range report.PullRequests {
			lines = append(lines, fmt.Sprintf("- <%s|%s>", pr.URL, pr.Title))
		}
		blocks = append(blocks,
			block{Type: "section", Text: &blockText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s* 👤\n%s", report.Developer, strings.Join(lines, "\n")),
			}},
			block{Type: "divider"},
		)
	}
	return message{Blocks: blocks}
}
