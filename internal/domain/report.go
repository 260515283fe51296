package domain

import "time"

// AssessedPR is one pull request awaiting a specific developer's review,
// annotated with the classifier's verdict. The JSON shape is what the
// notify job reads back from disk.
type AssessedPR struct {
	Repo       string `json:"repo"`
	Number     int    `json:"pr_number"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	URL        string `json:"url"`
	InProgress bool   `json:"in_progress"`
	Stale      bool   `json:"stale"`
}

// ReviewerReport groups the open pull requests waiting on one developer.
type ReviewerReport struct {
	Developer    string       `json:"developer"`
	PullRequests []AssessedPR `json:"reviewing_prs"`
}

// MonthCount is the number of commits that landed within one calendar month.
type MonthCount struct {
	Label string `json:"month"`
	Count int    `json:"commits"`
}

// RepoCommitReport is the monthly commit activity of one repository.
type RepoCommitReport struct {
	Repo         string       `json:"repo"`
	Months       []MonthCount `json:"months"`
	MeanPerMonth float64      `json:"mean_per_month"`
}

// MonthWindow is one full calendar month, bounded in UTC: the first day
// at 00:00:00 through the last day at 23:59:59.
type MonthWindow struct {
	Start time.Time
	End   time.Time
	Label string
}

// LastFullMonths returns the n full calendar months preceding the month
// of now, oldest first.
func LastFullMonths(now time.Time, n int) []MonthWindow {
	if n <= 0 {
		return nil
	}
	windows := make([]MonthWindow, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		lastDay := first.AddDate(0, 0, -1)
		start := time.Date(lastDay.Year(), lastDay.Month(), 1, 0, 0, 0, 0, time.UTC)
		windows[i] = MonthWindow{
			Start: start,
			End:   time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(), 23, 59, 59, 0, time.UTC),
			Label: start.Format("January 2006"),
		}
		first = start
	}
	return windows
}
