// Package report aggregates per-instance outcomes into the run's status
// report, summary artifacts, and process exit code.
package report

import (
	"fmt"
	"strings"

	"github.com/entrhq/pdi-login/pkg/types"
)

// Process exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Section labels of the status report
const (
	SucceededLabel = "Successful"
	FailedLabel    = "Failed"
)

// RunReport partitions the processed instance URLs by outcome, in processing
// order. Only Success counts as succeeded.
type RunReport struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Add records the outcome of one instance.
func (r *RunReport) Add(url string, outcome types.Outcome) {
	if outcome.IsSuccess() {
		r.Succeeded = append(r.Succeeded, url)
		return
	}
	r.Failed = append(r.Failed, url)
}

// Total returns the number of recorded instances.
func (r *RunReport) Total() int {
	if r == nil {
		return 0
	}
	return len(r.Succeeded) + len(r.Failed)
}

// Render formats the report as plain text. Empty sections are omitted.
func Render(r *RunReport) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	writeSection := func(label string, urls []string) {
		if len(urls) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", label)
		for _, url := range urls {
			fmt.Fprintf(&b, "- %s\n", url)
		}
	}

	writeSection(SucceededLabel, r.Succeeded)
	writeSection(FailedLabel, r.Failed)
	return b.String()
}

// ExitCode returns ExitSuccess iff at least one instance was processed and
// none failed.
func ExitCode(r *RunReport) int {
	if r.Total() == 0 || len(r.Failed) > 0 {
		return ExitFailure
	}
	return ExitSuccess
}
