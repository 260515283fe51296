// Package usecase contains the report-building business logic: the
// review-state classifier and the builders that turn fetched GitHub data
// into reports.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/domain"
	"github.com/teamradar/github-reports/internal/gateway"
)

// Classifier judges, for a (pull request, reviewer) pair, whether the
// reviewer has left feedback and whether the pull request has gone stale.
type Classifier struct {
	fetcher    gateway.Fetcher
	logger     *zap.Logger
	now        func() time.Time
	staleAfter time.Duration
}

// NewClassifier creates a new Classifier instance. Non-positive staleDays
// values fall back to the default threshold.
func NewClassifier(fetcher gateway.Fetcher, staleDays int, logger *zap.Logger) *Classifier {
	if staleDays <= 0 {
		staleDays = domain.DefaultStaleDays
	}
	return &Classifier{
		fetcher:    fetcher,
		logger:     logger,
		now:        time.Now,
		staleAfter: time.Duration(staleDays) * 24 * time.Hour,
	}
}

// Assess issues two reads, comments then reviews, and reports whether
// reviewer has responded on the pull request and whether the pull request
// has gone stale. A failed read is logged and contributes only the items
// it managed to return; it never aborts the assessment. Identity matching
// is case-sensitive.
func (c *Classifier) Assess(ctx context.Context, repo string, number int, reviewer string, updatedAt time.Time) domain.ReviewAssessment {
	hasFeedback := false

	comments, err := c.fetcher.IssueComments(ctx, repo, number)
	if err != nil {
		c.logger.Warn("comment listing incomplete, assessing with what arrived",
			zap.String("repo", repo), zap.Int("pr", number), zap.Error(err))
	}
	for _, comment := range comments {
		if comment.Author == reviewer {
			hasFeedback = true
			break
		}
	}

	reviews, err := c.fetcher.Reviews(ctx, repo, number)
	if err != nil {
		c.logger.Warn("review listing incomplete, assessing with what arrived",
			zap.String("repo", repo), zap.Int("pr", number), zap.Error(err))
	}
	if !hasFeedback {
		for _, review := range reviews {
			if review.Author == reviewer && countsAsFeedback(review.State) {
				hasFeedback = true
				break
			}
		}
	}

	return domain.ReviewAssessment{
		HasFeedback: hasFeedback,
		Stale:       c.now().Sub(updatedAt) > c.staleAfter,
	}
}

// countsAsFeedback reports whether a review state represents a response
// the author actually received. Draft and dismissed reviews do not.
func countsAsFeedback(state string) bool {
	switch state {
	case domain.ReviewStateCommented, domain.ReviewStateApproved, domain.ReviewStateChangesRequested:
		return true
	}
	return false
}
