package usecase

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/domain"
	"github.com/teamradar/github-reports/internal/gateway"
)

// CommitReporter counts commits per repository over the last full
// calendar months.
type CommitReporter struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
	now     func() time.Time
}

// NewCommitReporter creates a new CommitReporter instance.
func NewCommitReporter(fetcher gateway.Fetcher, logger *zap.Logger) *CommitReporter {
	return &CommitReporter{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Build counts the commits of every repository in repos across the last
// months full calendar months, oldest first, and computes the mean count
// per month. Count failures are logged and contribute the partial count.
// Repositories keep their configured order.
func (c *CommitReporter) Build(ctx context.Context, repos []string, months int) []domain.RepoCommitReport {
	windows := domain.LastFullMonths(c.now(), months)
	c.logger.Info("building commit report",
		zap.Int("repositories", len(repos)), zap.Int("months", len(windows)))

	reports := make([]domain.RepoCommitReport, 0, len(repos))
	for _, repo := range repos {
		counts := make([]domain.MonthCount, 0, len(windows))
		values := make([]float64, 0, len(windows))
		for _, window := range windows {
			count, err := c.fetcher.CommitCount(ctx, repo, window.Start, window.End)
			if err != nil {
				c.logger.Warn("commit count incomplete",
					zap.String("repo", repo), zap.String("month", window.Label), zap.Error(err))
			}
			counts = append(counts, domain.MonthCount{Label: window.Label, Count: count})
			values = append(values, float64(count))
		}
		mean := 0.0
		if len(values) > 0 {
			mean, _ = stats.Mean(values)
		}
		reports = append(reports, domain.RepoCommitReport{
			Repo:         repo,
			Months:       counts,
			MeanPerMonth: mean,
		})
	}
	return reports
}
