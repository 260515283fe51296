// Package render turns report structures into their JSON and HTML
// document forms.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/teamradar/github-reports/internal/domain"
)

// ReviewerJSON renders the reviewer reports as the four-space-indented
// JSON document the notify job later reads back from disk.
func ReviewerJSON(reports []domain.ReviewerReport) ([]byte, error) {
	data, err := json.MarshalIndent(reports, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reviewer reports: %w", err)
	}
	return data, nil
}

// ReviewerHTML renders the reviewer reports as a standalone HTML page,
// one card per developer with their pull requests linked. Stale and
// in-progress pull requests carry a badge.
func ReviewerHTML(reports []domain.ReviewerReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := reviewerTemplate.Execute(&buf, reports); err != nil {
		return nil, fmt.Errorf("failed to render reviewer report: %w", err)
	}
	return buf.Bytes(), nil
}

// commitsPage is the template context for the commits report.
type commitsPage struct {
	Reports     []domain.RepoCommitReport
	Months      int
	GeneratedAt time.Time
}

// CommitsHTML renders the per-repository commit counts as a standalone
// HTML page with one table per repository and a mean-per-month footer.
func CommitsHTML(reports []domain.RepoCommitReport, generatedAt time.Time) ([]byte, error) {
	months := 0
	if len(reports) > 0 {
		months = len(reports[0].Months)
	}
	var buf bytes.Buffer
	err := commitsTemplate.Execute(&buf, commitsPage{
		Reports:     reports,
		Months:      months,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render commits report: %w", err)
	}
	return buf.Bytes(), nil
}

var reviewerTemplate = template.Must(template.New("reviewers").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>GitHub PR Reviewers Report</title>
    <style>
        body {
            font-family: 'Arial', sans-serif;
            background-color: #f4f4f4;
            margin: 20px;
            padding: 20px;
            display: flex;
            flex-direction: column;
            align-items: center;
        }
        h1 {
            text-align: center;
            color: #333;
            font-size: 28px;
        }
        .developer-card {
            background: white;
            border-radius: 8px;
            box-shadow: 0 4px 8px rgba(0, 0, 0, 0.1);
            padding: 20px;
            margin: 10px;
            width: 60%;
            max-width: 600px;
            transition: transform 0.2s ease-in-out;
        }
        .developer-card:hover {
            transform: scale(1.02);
        }
        h2 {
            color: #0366d6;
            font-size: 20px;
            margin-bottom: 10px;
        }
        ul {
            list-style-type: none;
            padding: 0;
        }
        li {
            margin: 8px 0;
            padding: 8px;
            border-radius: 6px;
            background: #f9f9f9;
            transition: background 0.3s ease;
        }
        li:hover {
            background: #eaeaea;
        }
        a {
            text-decoration: none;
            color: #0366d6;
            font-weight: bold;
        }
        a:hover {
            text-decoration: underline;
        }
        .badge {
            display: inline-block;
            margin-left: 6px;
            padding: 2px 8px;
            border-radius: 10px;
            font-size: 12px;
            color: white;
        }
        .badge.in-progress {
            background: #28a745;
        }
        .badge.stale {
            background: #d73a49;
        }
    </style>
</head>
<body>
    <h1>GitHub PR Reviewers Report</h1>
{{- range .}}
    <div class="developer-card">
        <h2>{{.Developer}}</h2>
        <ul>
{{- range .PullRequests}}
            <li><a href="{{.URL}}" target="_blank">{{.Title}}</a>{{if .InProgress}}<span class="badge in-progress">in progress</span>{{end}}{{if .Stale}}<span class="badge stale">stale</span>{{end}}</li>
{{- end}}
        </ul>
    </div>
{{- end}}
</body>
</html>
`))

var commitsTemplate = template.Must(template.New("commits").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>GitHub Commits Report</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body class="bg-light">
<div class="container mt-5">
    <h1 class="mb-4">GitHub Commits Report (Last {{.Months}} Months)</h1>
{{- range .Reports}}
    <div class="card mb-4 shadow">
        <div class="card-header bg-dark text-white">
            <h5 class="mb-0">{{.Repo}}</h5>
        </div>
        <div class="card-body">
            <table class="table table-striped">
                <thead><tr><th>Month</th><th>Commits</th></tr></thead>
                <tbody>
{{- range .Months}}
                    <tr><td>{{.Label}}</td><td>{{.Count}}</td></tr>
{{- end}}
                </tbody>
                <tfoot><tr><th>Mean per month</th><th>{{printf "%.1f" .MeanPerMonth}}</th></tr></tfoot>
            </table>
        </div>
    </div>
{{- end}}
    <p class="text-muted">Generated at {{.GeneratedAt.UTC.Format "2006-01-02 15:04:05"}} UTC</p>
</div>
</body>
</html>
`))
