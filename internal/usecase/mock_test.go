package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/teamradar/github-reports/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It lets the classifier and report builders run without real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) OpenPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

func (m *mockFetcher) IssueComments(ctx context.Context, repo string, number int) ([]domain.Comment, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockFetcher) Reviews(ctx context.Context, repo string, number int) ([]domain.Review, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockFetcher) CommitCount(ctx context.Context, repo string, since, until time.Time) (int, error) {
	args := m.Called(ctx, repo, since, until)
	return args.Int(0), args.Error(1)
}
