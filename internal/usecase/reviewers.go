package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/domain"
	"github.com/teamradar/github-reports/internal/gateway"
)

// ReviewerReporter builds the per-developer report of open pull requests
// waiting on their review.
type ReviewerReporter struct {
	fetcher    gateway.Fetcher
	classifier *Classifier
	logger     *zap.Logger
}

// NewReviewerReporter creates a new ReviewerReporter instance.
func NewReviewerReporter(fetcher gateway.Fetcher, classifier *Classifier, logger *zap.Logger) *ReviewerReporter {
	return &ReviewerReporter{
		fetcher:    fetcher,
		classifier: classifier,
		logger:     logger,
	}
}

// Build groups the open pull requests of repos by requested reviewer,
// restricted to developers, and annotates each pull request with its
// review assessment. Fetch failures are logged and contribute whatever
// partial data they returned; Build itself never fails. Developers with
// no matching pull requests are omitted, and the result is sorted by
// developer login for deterministic output.
func (r *ReviewerReporter) Build(ctx context.Context, repos, developers []string) []domain.ReviewerReport {
	r.logger.Info("building reviewer report",
		zap.Int("repositories", len(repos)), zap.Int("developers", len(developers)))

	watched := make(map[string]bool, len(developers))
	for _, developer := range developers {
		watched[developer] = true
	}

	buckets := make(map[string][]domain.AssessedPR)
	for _, repo := range repos {
		prs, err := r.fetcher.OpenPullRequests(ctx, repo)
		if err != nil {
			r.logger.Warn("pull request listing incomplete",
				zap.String("repo", repo), zap.Int("fetched", len(prs)), zap.Error(err))
		}
		for _, pr := range prs {
			for _, reviewer := range pr.Reviewers {
				if !watched[reviewer] {
					continue
				}
				assessment := r.classifier.Assess(ctx, pr.Repo, pr.Number, reviewer, pr.UpdatedAt)
				buckets[reviewer] = append(buckets[reviewer], domain.AssessedPR{
					Repo:       pr.Repo,
					Number:     pr.Number,
					Title:      pr.Title,
					Author:     pr.Author,
					URL:        pr.URL,
					InProgress: assessment.HasFeedback,
					Stale:      assessment.Stale,
				})
			}
		}
	}

	reports := make([]domain.ReviewerReport, 0, len(buckets))
	for developer, prs := range buckets {
		reports = append(reports, domain.ReviewerReport{Developer: developer, PullRequests: prs})
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Developer < reports[j].Developer
	})
	return reports
}

// RawLister collects open pull requests without any classification, for
// the plain listing job.
type RawLister struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
}

// NewRawLister creates a new RawLister instance.
func NewRawLister(fetcher gateway.Fetcher, logger *zap.Logger) *RawLister {
	return &RawLister{fetcher: fetcher, logger: logger}
}

// List returns the open pull requests of every repository in repos, in
// fetch order. Failures are logged and leave that repository's partial
// contribution in place. The result is never nil, so an empty listing
// still marshals as an empty JSON array.
func (l *RawLister) List(ctx context.Context, repos []string) []domain.PullRequest {
	prs := make([]domain.PullRequest, 0)
	for _, repo := range repos {
		fetched, err := l.fetcher.OpenPullRequests(ctx, repo)
		if err != nil {
			l.logger.Warn("pull request listing incomplete",
				zap.String("repo", repo), zap.Int("fetched", len(fetched)), zap.Error(err))
		}
		prs = append(prs, fetched...)
	}
	return prs
}
