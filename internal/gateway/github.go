// Package gateway provides a gateway to the GitHub API, wrapping the
// go-github REST client with the paginated fetch and rate-limit backoff
// behavior the report jobs rely on.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/teamradar/github-reports/internal/domain"
)

// perPage is the page size requested from every list endpoint. A page
// shorter than this ends the listing: a short page is assumed to be the
// last one. Servers can in principle return short non-final pages, so
// this is a documented approximation, not a guarantee.
const perPage = 100

// maxRateLimitRetries bounds how often a single listing waits out a
// rate-limit window before giving up and returning what it has.
const maxRateLimitRetries = 3

// Fetcher defines the read operations the report builders need from
// GitHub. Every method returns the items accumulated before any failure:
// a nil error means the listing completed, a non-nil error means the
// items are a partial result.
type Fetcher interface {
	OpenPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error)
	IssueComments(ctx context.Context, repo string, number int) ([]domain.Comment, error)
	Reviews(ctx context.Context, repo string, number int) ([]domain.Review, error)
	CommitCount(ctx context.Context, repo string, since, until time.Time) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface,
// backed by the GitHub REST API.
type GitHubGateway struct {
	client *github.Client
	logger *zap.Logger
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewGitHubGateway builds a gateway around an authenticated REST client.
// The transport stack handles GitHub's secondary rate limits; primary
// rate limits (403 with a reset header) are handled page by page inside
// the fetch loop.
func NewGitHubGateway(token string, logger *zap.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		client: github.NewClient(httpClient),
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
	}, nil
}

// OpenPullRequests lists every open pull request of repo in page order.
func (g *GitHubGateway) OpenPullRequests(ctx context.Context, repo string) ([]domain.PullRequest, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	g.logger.Info("fetching open pull requests", zap.String("repo", repo))

	var prs []domain.PullRequest
	err = g.paginate(ctx, repo+" pulls", func(page int) (int, error) {
		opts := &github.PullRequestListOptions{
			State:       "open",
			ListOptions: github.ListOptions{PerPage: perPage, Page: page},
		}
		items, _, err := g.client.PullRequests.List(ctx, owner, name, opts)
		if err != nil {
			return 0, err
		}
		for _, item := range items {
			prs = append(prs, convertPullRequest(repo, item))
		}
		return len(items), nil
	})
	return prs, err
}

// IssueComments lists the issue-style comments on a pull request.
func (g *GitHubGateway) IssueComments(ctx context.Context, repo string, number int) ([]domain.Comment, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var comments []domain.Comment
	err = g.paginate(ctx, fmt.Sprintf("%s#%d comments", repo, number), func(page int) (int, error) {
		opts := &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{PerPage: perPage, Page: page},
		}
		items, _, err := g.client.Issues.ListComments(ctx, owner, name, number, opts)
		if err != nil {
			return 0, err
		}
		for _, item := range items {
			comments = append(comments, domain.Comment{
				Author:    item.GetUser().GetLogin(),
				CreatedAt: item.GetCreatedAt().Time,
			})
		}
		return len(items), nil
	})
	return comments, err
}

// Reviews lists the formal code reviews on a pull request, including
// unsubmitted PENDING ones; callers decide which states count.
func (g *GitHubGateway) Reviews(ctx context.Context, repo string, number int) ([]domain.Review, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var reviews []domain.Review
	err = g.paginate(ctx, fmt.Sprintf("%s#%d reviews", repo, number), func(page int) (int, error) {
		opts := &github.ListOptions{PerPage: perPage, Page: page}
		items, _, err := g.client.PullRequests.ListReviews(ctx, owner, name, number, opts)
		if err != nil {
			return 0, err
		}
		for _, item := range items {
			reviews = append(reviews, domain.Review{
				Author:      item.GetUser().GetLogin(),
				State:       item.GetState(),
				SubmittedAt: item.GetSubmittedAt().Time,
			})
		}
		return len(items), nil
	})
	return reviews, err
}

// CommitCount counts the commits on repo between since and until
// inclusive. Only the count is kept; commit bodies are discarded.
func (g *GitHubGateway) CommitCount(ctx context.Context, repo string, since, until time.Time) (int, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return 0, err
	}
	g.logger.Info("counting commits",
		zap.String("repo", repo), zap.Time("since", since), zap.Time("until", until))

	total := 0
	err = g.paginate(ctx, repo+" commits", func(page int) (int, error) {
		opts := &github.CommitsListOptions{
			Since:       since,
			Until:       until,
			ListOptions: github.ListOptions{PerPage: perPage, Page: page},
		}
		items, _, err := g.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return 0, err
		}
		total += len(items)
		return len(items), nil
	})
	return total, err
}

// paginate drives a 1-based page loop over fetch until a page comes back
// empty or short. A rate-limited page is retried after the reset window
// passes, keeping the pages accumulated so far; any other error ends the
// listing with whatever has been accumulated.
func (g *GitHubGateway) paginate(ctx context.Context, resource string, fetch func(page int) (int, error)) error {
	retries := 0
	for page := 1; ; {
		g.logger.Debug("fetching page", zap.String("resource", resource), zap.Int("page", page))
		n, err := fetch(page)
		if err != nil {
			var rateErr *github.RateLimitError
			if errors.As(err, &rateErr) && retries < maxRateLimitRetries {
				retries++
				wait := g.resetWait(rateErr.Rate.Reset.Time)
				g.logger.Warn("rate limit exceeded, waiting for reset",
					zap.String("resource", resource),
					zap.Int("page", page),
					zap.Duration("wait", wait),
					zap.Int("retry", retries),
				)
				g.sleep(wait)
				continue
			}
			return fmt.Errorf("failed to fetch %s page %d: %w", resource, page, err)
		}
		if n == 0 || n < perPage {
			return nil
		}
		page++
	}
}

// resetWait is how long to sleep before a rate-limited request may be
// retried: one second past the server's reset instant, never negative.
func (g *GitHubGateway) resetWait(reset time.Time) time.Duration {
	wait := reset.Sub(g.now()) + time.Second
	if wait < 0 {
		return 0
	}
	return wait
}

// convertPullRequest maps an API pull request onto the domain snapshot.
// Repo is taken from the identifier the listing was requested under, so
// a snapshot always matches the repository it was fetched for.
func convertPullRequest(repo string, pr *github.PullRequest) domain.PullRequest {
	reviewers := make([]string, 0, len(pr.RequestedReviewers))
	for _, user := range pr.RequestedReviewers {
		reviewers = append(reviewers, user.GetLogin())
	}
	assignees := make([]string, 0, len(pr.Assignees))
	for _, user := range pr.Assignees {
		assignees = append(assignees, user.GetLogin())
	}
	return domain.PullRequest{
		Repo:      repo,
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Author:    pr.GetUser().GetLogin(),
		URL:       pr.GetHTMLURL(),
		UpdatedAt: pr.GetUpdatedAt().Time,
		Reviewers: reviewers,
		Assignees: assignees,
	}
}

// splitRepo splits an "owner/name" repository identifier.
func splitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository identifier %q (want owner/name)", repo)
	}
	return owner, name, nil
}
