package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// BuildAuditReport renders a finalized run log as a structured Markdown
// report. The section set and field names are a contract external tools rely
// on: run info, input filtering, clustering, stage timing, LLM output
// coverage, bucket distribution, data loss, validation results, errors.
func BuildAuditReport(runLog *domain.AnalysisLog) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("# Analysis Audit — %s\n\n", runLog.RunID))

	out.WriteString("## Run Info\n\n")
	out.WriteString("| Field | Value |\n|---|---|\n")
	out.WriteString(fmt.Sprintf("| run_id | %s |\n", runLog.RunID))
	out.WriteString(fmt.Sprintf("| started_at | %s |\n", runLog.StartedAt.Format("2006-01-02 15:04:05 MST")))
	out.WriteString(fmt.Sprintf("| finished_at | %s |\n", runLog.FinishedAt.Format("2006-01-02 15:04:05 MST")))
	out.WriteString(fmt.Sprintf("| duration | %s |\n\n", runLog.FinishedAt.Sub(runLog.StartedAt).Round(time.Millisecond)))

	out.WriteString("## Input Filtering\n\n")
	out.WriteString("| Field | Value |\n|---|---|\n")
	out.WriteString(fmt.Sprintf("| records_received | %d |\n", runLog.RecordsReceived))
	out.WriteString(fmt.Sprintf("| records_skipped | %d |\n", runLog.RecordsSkipped))
	out.WriteString(fmt.Sprintf("| rows_analyzed | %d |\n\n", runLog.RowsAnalyzed))

	out.WriteString("## Clustering\n\n")
	out.WriteString("| Field | Value |\n|---|---|\n")
	out.WriteString(fmt.Sprintf("| cluster_count | %d |\n", runLog.ClusterCount))
	out.WriteString(fmt.Sprintf("| top_failure_rate | %.3f |\n", runLog.TopFailureRate))
	out.WriteString(fmt.Sprintf("| sampled_failures | %d |\n\n", runLog.SampledFailures))

	out.WriteString("## Stage Timing\n\n")
	out.WriteString("| Stage | Duration (ms) | In | Out | Success | Error |\n|---|---|---|---|---|---|\n")
	for _, stage := range runLog.Stages {
		errText := "-"
		if stage.Error != "" {
			errText = stage.Error
		}
		out.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %t | %s |\n",
			stage.Name, stage.DurationMs, stage.ItemsIn, stage.ItemsOut, stage.Success, errText))
	}
	out.WriteString("\n")

	out.WriteString("## LLM Output Coverage\n\n")
	out.WriteString("| Field | Value |\n|---|---|\n")
	out.WriteString(fmt.Sprintf("| mapped_topics | %d |\n", runLog.MappedTopics))
	out.WriteString(fmt.Sprintf("| unmapped_topics | %d |\n", runLog.UnmappedTopics))
	out.WriteString(fmt.Sprintf("| overridden_rows | %d |\n", runLog.OverriddenRows))
	out.WriteString(fmt.Sprintf("| dropped_indices | %d |\n\n", runLog.DroppedIndices))

	out.WriteString("## Bucket Distribution\n\n")
	out.WriteString("| Bucket | Label | Rows |\n|---|---|---|\n")
	for _, id := range []string{domain.BucketResolved, domain.BucketMissingCapability, domain.BucketBrokenLogic, domain.BucketMissingKnowledge} {
		out.WriteString(fmt.Sprintf("| %s | %s | %d |\n", id, domain.BucketLabels[id], runLog.BucketDistribution[id]))
	}
	out.WriteString("\n")

	out.WriteString("## Data Loss\n\n")
	out.WriteString(fmt.Sprintf("| Field | Value |\n|---|---|\n| data_loss_pct | %.2f%% |\n\n", runLog.DataLossPct))

	out.WriteString("## Validation Results\n\n")
	out.WriteString("| Check | Status | Message |\n|---|---|---|\n")
	for _, check := range runLog.Validations {
		out.WriteString(fmt.Sprintf("| %s | %s | %s |\n", check.Name, check.Status, check.Message))
	}
	out.WriteString("\n")

	out.WriteString("## Errors\n\n")
	if len(runLog.Errors) == 0 {
		out.WriteString("None.\n")
	} else {
		for _, e := range runLog.Errors {
			out.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}
	return out.String()
}

// WriteAuditReport writes the audit report next to the backlog report and
// returns the path.
func WriteAuditReport(runLog *domain.AnalysisLog, outputDir string) (string, error) {
	content := BuildAuditReport(runLog)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_audit.md", sanitizeFilename(runLog.RunID))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}
