package slack

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/slack-go/slack"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// Notifier posts finished-run summaries and uploads the audit report to a
// configured channel. Posting failures are logged, never fatal: notification
// is a courtesy, not part of the run contract.
type Notifier struct {
	api       *slack.Client
	channelID string
}

func NewNotifier(botToken, channelID string) *Notifier {
	return &Notifier{
		api:       slack.New(botToken),
		channelID: channelID,
	}
}

// PostRunSummary posts the bucket distribution and finding counts for a
// completed analysis.
func (n *Notifier) PostRunSummary(result *domain.AnalysisResult) error {
	dist := result.BucketDistribution()
	var parts []string
	for _, id := range []string{domain.BucketResolved, domain.BucketMissingCapability, domain.BucketBrokenLogic, domain.BucketMissingKnowledge} {
		parts = append(parts, fmt.Sprintf("%s: %d", domain.BucketLabels[id], dist[id]))
	}
	findings := 0
	for _, bucket := range domain.ActionBuckets {
		findings += len(result.Recommendations[bucket])
	}

	msg := fmt.Sprintf("Analysis %s complete: %d conversations, %d findings.\n%s",
		result.Log.RunID, result.TotalRows, findings, strings.Join(parts, " | "))
	if len(result.Log.Errors) > 0 {
		msg += fmt.Sprintf("\nWarnings:\n%s", strings.Join(result.Log.Errors, "\n"))
	}

	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("slack post run=%s error: %v", result.Log.RunID, err)
	}
	return err
}

// UploadAuditReport uploads the rendered audit report file to the channel.
func (n *Notifier) UploadAuditReport(runID, filePath string) error {
	fi, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("stat audit report: %w", err)
	}
	if fi.Size() <= 0 {
		return fmt.Errorf("audit report is empty: %s", filePath)
	}

	_, err = n.api.UploadFileV2(slack.UploadFileV2Parameters{
		File:           filePath,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(filePath),
		Channel:        n.channelID,
		Title:          fmt.Sprintf("Audit report %s", runID),
		InitialComment: fmt.Sprintf("Audit trail for analysis run %s", runID),
	})
	if err != nil {
		log.Printf("slack upload run=%s error: %v", runID, err)
	}
	return err
}
