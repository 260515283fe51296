// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// PullRequest is an immutable snapshot of one open pull request, taken
// once per job run. Repo always equals the repository identifier the
// snapshot was fetched under.
type PullRequest struct {
	Repo      string    `json:"repo"`
	Number    int       `json:"pr_number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
	Reviewers []string  `json:"reviewers"`
	Assignees []string  `json:"assignees"`
}

// Comment is an issue-style comment left on a pull request.
type Comment struct {
	Author    string
	CreatedAt time.Time
}

// Review is a formal code review left on a pull request.
type Review struct {
	Author      string
	State       string
	SubmittedAt time.Time
}

// Review states as the GitHub review API reports them. A PENDING review
// is a draft the reviewer has not submitted yet.
const (
	ReviewStateApproved         = "APPROVED"
	ReviewStateChangesRequested = "CHANGES_REQUESTED"
	ReviewStateCommented        = "COMMENTED"
	ReviewStateDismissed        = "DISMISSED"
	ReviewStatePending          = "PENDING"
)

// DefaultStaleDays is the staleness threshold applied when the
// configuration does not provide one.
const DefaultStaleDays = 7

// ReviewAssessment is the verdict for one (pull request, reviewer) pair:
// whether the reviewer has left any feedback and whether the pull request
// has gone stale. Computed fresh every run, never persisted.
type ReviewAssessment struct {
	HasFeedback bool
	Stale       bool
}
