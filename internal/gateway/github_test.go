package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamradar/github-reports/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock
// HTTP server. Tests that care about backoff override now and sleep on
// the returned gateway.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	gateway := &GitHubGateway{
		client: client,
		logger: zap.NewNop(),
		now:    time.Now,
		sleep:  func(time.Duration) {},
	}
	return gateway, server
}

// pullsPage renders a pull request list page of count items numbered
// from start.
func pullsPage(start, count int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n := start + i
		items = append(items, fmt.Sprintf(
			`{"number": %d, "title": "PR %d", "user": {"login": "alice"}, "html_url": "https://github.com/org/repo/pull/%d", "updated_at": "2025-06-01T12:00:00Z", "requested_reviewers": [{"login": "bob"}], "assignees": [{"login": "carol"}]}`,
			n, n, n))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func commitsPage(count int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"sha": "commit-%d"}`, i))
	}
	return "[" + strings.Join(items, ",") + "]"
}

// writeRateLimited answers a request the way api.github.com does when
// the primary rate limit is exhausted.
func writeRateLimited(w http.ResponseWriter, reset time.Time) {
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	fmt.Fprint(w, `{"message": "API rate limit exceeded for installation"}`)
}

func TestGitHubGateway_OpenPullRequests(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expectedCount  int
		expectedPages  []string
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "concatenates pages until a short page arrives",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Query().Get("page") {
				case "1":
					fmt.Fprint(w, pullsPage(1, perPage))
				case "2":
					fmt.Fprint(w, pullsPage(101, 3))
				}
			},
			expectedCount: 103,
			expectedPages: []string{"1", "2"},
		},
		{
			name: "a full page followed by an empty page stops after the empty one",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Query().Get("page") {
				case "1":
					fmt.Fprint(w, pullsPage(1, perPage))
				case "2":
					fmt.Fprint(w, `[]`)
				}
			},
			expectedCount: perPage,
			expectedPages: []string{"1", "2"},
		},
		{
			name: "a short first page ends the listing after one request",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, pullsPage(1, 2))
			},
			expectedCount: 2,
			expectedPages: []string{"1"},
		},
		{
			name: "an empty first page yields no snapshots and no error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[]`)
			},
			expectedCount: 0,
			expectedPages: []string{"1"},
		},
		{
			name: "a server error keeps the pages fetched before it",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("page") == "1" {
					fmt.Fprint(w, pullsPage(1, perPage))
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectedCount:  perPage,
			expectedPages:  []string{"1", "2"},
			expectError:    true,
			expectedErrMsg: "failed to fetch org/repo pulls page 2",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var pages []string
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/repos/org/repo/pulls")
				assert.Equal(t, "open", r.URL.Query().Get("state"))
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				pages = append(pages, r.URL.Query().Get("page"))
				tc.handlerFunc(w, r)
			}
			gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

			prs, err := gateway.OpenPullRequests(context.Background(), "org/repo")

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, prs, tc.expectedCount)
			assert.Equal(t, tc.expectedPages, pages)
		})
	}
}

func TestGitHubGateway_OpenPullRequests_MapsFields(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pullsPage(42, 1))
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

	prs, err := gateway.OpenPullRequests(context.Background(), "org/repo")

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, domain.PullRequest{
		Repo:      "org/repo",
		Number:    42,
		Title:     "PR 42",
		Author:    "alice",
		URL:       "https://github.com/org/repo/pull/42",
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Reviewers: []string{"bob"},
		Assignees: []string{"carol"},
	}, prs[0])
}

func TestGitHubGateway_OpenPullRequests_InvalidRepo(t *testing.T) {
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

	_, err := gateway.OpenPullRequests(context.Background(), "not-a-repo")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid repository identifier")
	assert.Zero(t, requests)
}

func TestGitHubGateway_RateLimit_RetriesSamePage(t *testing.T) {
	// The reset header has to sit in the real past so the client library
	// does not short-circuit the retry before it reaches the server; the
	// wait math runs on the injected clock instead.
	reset := time.Unix(time.Now().Add(-2*time.Second).Unix(), 0)
	limited := false
	var pages []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page"))
		if !limited {
			limited = true
			writeRateLimited(w, reset)
			return
		}
		fmt.Fprint(w, pullsPage(1, 2))
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	gateway.now = func() time.Time { return reset.Add(-10 * time.Second) }
	var slept []time.Duration
	gateway.sleep = func(d time.Duration) { slept = append(slept, d) }

	prs, err := gateway.OpenPullRequests(context.Background(), "org/repo")

	require.NoError(t, err)
	assert.Len(t, prs, 2)
	assert.Equal(t, []string{"1", "1"}, pages)
	assert.Equal(t, []time.Duration{11 * time.Second}, slept)
}

func TestGitHubGateway_RateLimit_KeepsAccumulatedPages(t *testing.T) {
	reset := time.Unix(time.Now().Add(-2*time.Second).Unix(), 0)
	limited := false
	var pages []string
	handler := func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch {
		case page == "1":
			fmt.Fprint(w, pullsPage(1, perPage))
		case !limited:
			limited = true
			writeRateLimited(w, reset)
		default:
			fmt.Fprint(w, pullsPage(101, 3))
		}
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	gateway.now = func() time.Time { return reset.Add(-10 * time.Second) }
	var slept []time.Duration
	gateway.sleep = func(d time.Duration) { slept = append(slept, d) }

	prs, err := gateway.OpenPullRequests(context.Background(), "org/repo")

	require.NoError(t, err)
	assert.Len(t, prs, 103)
	assert.Equal(t, []string{"1", "2", "2"}, pages)
	assert.Len(t, slept, 1)
}

func TestGitHubGateway_RateLimit_GivesUpAfterMaxRetries(t *testing.T) {
	reset := time.Unix(time.Now().Add(-2*time.Second).Unix(), 0)
	requests := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeRateLimited(w, reset)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))
	gateway.now = func() time.Time { return reset.Add(-10 * time.Second) }
	var slept []time.Duration
	gateway.sleep = func(d time.Duration) { slept = append(slept, d) }

	prs, err := gateway.OpenPullRequests(context.Background(), "org/repo")

	assert.Error(t, err)
	var rateErr *github.RateLimitError
	assert.ErrorAs(t, err, &rateErr)
	assert.Empty(t, prs)
	assert.Equal(t, 1+maxRateLimitRetries, requests)
	assert.Len(t, slept, maxRateLimitRetries)
}

func TestGitHubGateway_ResetWait(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gateway := &GitHubGateway{now: func() time.Time { return now }}

	testCases := []struct {
		name     string
		reset    time.Time
		expected time.Duration
	}{
		{name: "future reset waits one second past it", reset: now.Add(30 * time.Second), expected: 31 * time.Second},
		{name: "reset at now still waits the spare second", reset: now, expected: time.Second},
		{name: "past reset never waits a negative duration", reset: now.Add(-5 * time.Second), expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, gateway.resetWait(tc.reset))
		})
	}
}

func TestGitHubGateway_IssueComments(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/org/repo/issues/5/comments")
		fmt.Fprint(w, `[{"user": {"login": "dave"}, "created_at": "2025-05-01T09:30:00Z"}]`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

	comments, err := gateway.IssueComments(context.Background(), "org/repo", 5)

	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, domain.Comment{
		Author:    "dave",
		CreatedAt: time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
	}, comments[0])
}

func TestGitHubGateway_Reviews(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/org/repo/pulls/7/reviews")
		fmt.Fprint(w, `[{"user": {"login": "erin"}, "state": "APPROVED", "submitted_at": "2025-05-02T10:00:00Z"}, {"user": {"login": "frank"}, "state": "PENDING"}]`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

	reviews, err := gateway.Reviews(context.Background(), "org/repo", 7)

	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, domain.Review{
		Author:      "erin",
		State:       domain.ReviewStateApproved,
		SubmittedAt: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
	}, reviews[0])
	assert.Equal(t, domain.ReviewStatePending, reviews[1].State)
	assert.True(t, reviews[1].SubmittedAt.IsZero())
}

func TestGitHubGateway_CommitCount(t *testing.T) {
	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/repos/org/repo/commits")
		assert.Equal(t, "2025-03-01T00:00:00Z", r.URL.Query().Get("since"))
		assert.Equal(t, "2025-03-31T23:59:59Z", r.URL.Query().Get("until"))
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, commitsPage(perPage))
		case "2":
			fmt.Fprint(w, commitsPage(40))
		}
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

	count, err := gateway.CommitCount(context.Background(), "org/repo", since, until)

	require.NoError(t, err)
	assert.Equal(t, 140, count)
}

func TestGitHubGateway_CommitCount_PartialOnError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, commitsPage(perPage))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message": "Bad Gateway"}`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler))

	count, err := gateway.CommitCount(context.Background(), "org/repo",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC))

	assert.Error(t, err)
	assert.Equal(t, perPage, count)
}

func TestNewGitHubGateway(t *testing.T) {
	logger := zap.NewNop()

	gateway, err := NewGitHubGateway("dummy-token", logger)

	require.NoError(t, err)
	assert.NotNil(t, gateway.client)
	assert.NotNil(t, gateway.now)
	assert.NotNil(t, gateway.sleep)
}

func TestSplitRepo(t *testing.T) {
	testCases := []struct {
		name        string
		repo        string
		owner       string
		repoName    string
		expectError bool
	}{
		{name: "owner and name", repo: "org/repo", owner: "org", repoName: "repo"},
		{name: "missing slash", repo: "orgrepo", expectError: true},
		{name: "empty owner", repo: "/repo", expectError: true},
		{name: "empty name", repo: "org/", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, name, err := splitRepo(tc.repo)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.repoName, name)
		})
	}
}
