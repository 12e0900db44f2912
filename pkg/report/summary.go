package report

import (
	"time"

	"github.com/entrhq/pdi-login/pkg/history"
	"github.com/entrhq/pdi-login/pkg/types"
)

// Summary contains a complete summary of one run
type Summary struct {
	RunID     string          `json:"run_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Duration  time.Duration   `json:"duration"`
	Report    RunReport       `json:"report"`
	Entries   []history.Entry `json:"entries"`
	Metrics   RunMetrics      `json:"metrics"`
	Cancelled bool            `json:"cancelled,omitempty"`
}

// RunMetrics contains outcome counts for a run
type RunMetrics struct {
	Instances  int `json:"instances"`
	Succeeded  int `json:"succeeded"`
	Warnings   int `json:"warnings"`
	Errors     int `json:"errors"`
	Hibernated int `json:"hibernated"`
	Skipped    int `json:"skipped,omitempty"`
}

// NewSummary starts a summary for a run.
func NewSummary(runID string, start time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartTime: start,
		Entries:   []history.Entry{},
	}
}

// Record adds one instance's entry to the summary and report.
func (s *Summary) Record(entry history.Entry) {
	s.Entries = append(s.Entries, entry)
	s.Report.Add(entry.URL, entry.Status)

	s.Metrics.Instances++
	switch entry.Status {
	case types.OutcomeSuccess:
		s.Metrics.Succeeded++
	case types.OutcomeWarning:
		s.Metrics.Warnings++
	default:
		s.Metrics.Errors++
	}
	if entry.Hibernated {
		s.Metrics.Hibernated++
	}
}

// MarkSkipped reports an instance that was never processed as failed.
func (s *Summary) MarkSkipped(url string) {
	s.Report.Failed = append(s.Report.Failed, url)
	s.Metrics.Instances++
	s.Metrics.Skipped++
}

// Finish stamps the end time.
func (s *Summary) Finish(end time.Time) {
	s.EndTime = end
	s.Duration = end.Sub(s.StartTime)
}

// ExitCode returns the process exit code for the run.
func (s *Summary) ExitCode() int {
	return ExitCode(&s.Report)
}
