package report

import (
	"encoding/json"
	"fmt"

	"github.com/entrhq/pdi-login/internal/fsutil"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	statusPath  string
	summaryPath string
}

// NewArtifactWriter creates a new artifact writer. An empty path disables
// that artifact.
func NewArtifactWriter(statusPath, summaryPath string) *ArtifactWriter {
	return &ArtifactWriter{
		statusPath:  statusPath,
		summaryPath: summaryPath,
	}
}

// WriteAll writes the status report and the summary JSON
func (w *ArtifactWriter) WriteAll(summary *Summary) error {
	if err := w.WriteStatus(&summary.Report); err != nil {
		return fmt.Errorf("failed to write status report: %w", err)
	}

	if err := w.WriteSummaryJSON(summary); err != nil {
		return fmt.Errorf("failed to write summary JSON: %w", err)
	}

	return nil
}

// WriteStatus writes the plain-text status report
func (w *ArtifactWriter) WriteStatus(r *RunReport) error {
	if w.statusPath == "" {
		return nil
	}
	return fsutil.WriteFileAtomic(w.statusPath, []byte(Render(r)), 0o755)
}

// WriteSummaryJSON writes the full run summary as JSON
func (w *ArtifactWriter) WriteSummaryJSON(summary *Summary) error {
	if w.summaryPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	return fsutil.WriteFileAtomic(w.summaryPath, append(data, '\n'), 0o755)
}
