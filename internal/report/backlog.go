package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// BuildBacklogReport renders the prioritized improvement backlog as Markdown:
// one section per action bucket, recommendations in merge order (descending
// goal alignment).
func BuildBacklogReport(result *domain.AnalysisResult, teamName string, date time.Time) string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("# %s — Improvement Backlog (%s)\n\n", teamName, date.Format("2006-01-02")))
	out.WriteString(fmt.Sprintf("Analyzed %d conversations across %d topics.\n\n", result.TotalRows, len(result.Clusters)))

	dist := result.BucketDistribution()
	out.WriteString("| Bucket | Label | Rows |\n|---|---|---|\n")
	for _, id := range []string{domain.BucketResolved, domain.BucketMissingCapability, domain.BucketBrokenLogic, domain.BucketMissingKnowledge} {
		out.WriteString(fmt.Sprintf("| %s | %s | %d |\n", id, domain.BucketLabels[id], dist[id]))
	}
	out.WriteString("\n")

	for _, bucket := range domain.ActionBuckets {
		recs := result.Recommendations[bucket]
		out.WriteString(fmt.Sprintf("## Bucket %s — %s\n\n", bucket, domain.BucketLabels[bucket]))
		if len(recs) == 0 {
			out.WriteString("No findings.\n\n")
			continue
		}
		for _, rec := range recs {
			out.WriteString(fmt.Sprintf("### %s\n\n", rec.Topic))
			out.WriteString(fmt.Sprintf("- **Priority:** %s | **Goal alignment:** %d/10 | **Conversations:** %d\n", rec.Priority, rec.GoalAlignment, rec.Count))
			if rec.Problem != "" {
				out.WriteString(fmt.Sprintf("- **Problem:** %s\n", rec.Problem))
			}
			if rec.RootCause != "" {
				out.WriteString(fmt.Sprintf("- **Root cause:** %s\n", rec.RootCause))
			}
			if rec.Recommendation != "" {
				out.WriteString(fmt.Sprintf("- **Recommendation:** %s\n", rec.Recommendation))
			}
			if rec.KPI != "" {
				out.WriteString(fmt.Sprintf("- **KPI to watch:** %s\n", rec.KPI))
			}
			for _, ex := range rec.Examples {
				out.WriteString(fmt.Sprintf("  - > %s\n", ex))
			}
			out.WriteString("\n")
		}
	}
	return out.String()
}

// WriteBacklogReport writes the backlog report to outputDir with a dated
// filename and returns the path.
func WriteBacklogReport(result *domain.AnalysisResult, outputDir, teamName string, date time.Time) (string, error) {
	content := BuildBacklogReport(result, teamName, date)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_backlog_%s.md", sanitizeFilename(teamName), date.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(s)
}
