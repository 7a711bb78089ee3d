package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/appctl/internal/database"
	"github.com/actionsum/appctl/internal/models"
)

// Reporter summarizes the session journal
type Reporter struct {
	repo *database.Repository
	now  func() time.Time
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	summaries, err := r.repo.GetAppSummarySince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get app summary")
	}

	report := &models.Report{
		Period:      *period,
		Apps:        summaries,
		GeneratedAt: r.now(),
	}
	for _, s := range summaries {
		report.TotalLaunches += s.Launches
		report.TotalFailures += s.Failures
	}
	report.SuccessRate = successRate(report.TotalLaunches, report.TotalFailures)

	return report, nil
}

// successRate is the share of launch attempts that did not fail. Failures
// include window waits of launches that did start, so it is clamped at zero.
func successRate(launches, failures int) float64 {
	attempts := launches
	if failures > attempts {
		attempts = failures
	}
	if attempts == 0 {
		return 0
	}
	rate := float64(launches-failures) / float64(attempts) * 100.0
	if rate < 0 {
		return 0
	}
	return rate
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Launch Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Launches: %d  Failures: %d  Success: %.1f%%\n\n",
		report.TotalLaunches, report.TotalFailures, report.SuccessRate)

	if len(report.Apps) == 0 {
		output += "No sessions recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-30s %8s %8s %8s %8s %10s %10s\n",
		"Application", "Launch", "Attach", "Kill", "Failed", "Start ms", "Window ms")
	output += fmt.Sprintf("%s\n", "--------------------------------------------------------------------------------------")

	for _, app := range report.Apps {
		output += fmt.Sprintf("%-30s %8d %8d %8d %8d %10.0f %10.0f\n",
			truncate(app.AppName, 30),
			app.Launches,
			app.Attaches,
			app.Terminations,
			app.Failures,
			app.AvgLaunchMs,
			app.AvgWindowMs)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
