package analysis

import (
	"fmt"
	"strings"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// StrategicClusterCap is the number of top-failure clusters sent to the
// strategic stage.
const StrategicClusterCap = 20

const (
	maxCapabilitySummaryChars = 4000
	maxBusinessGoalsChars     = 2000
	maxQueryChars             = 150
	maxReasoningChars         = 200
)

// BuildStrategicPrompts renders the cluster-level stage prompts from the top
// clusters by failure rate plus the business context.
func BuildStrategicPrompts(clusters []domain.ClusterSummary, businessGoals, capabilitySummary string, clusterCap int) (string, string) {
	if clusterCap <= 0 {
		clusterCap = StrategicClusterCap
	}
	if len(clusters) > clusterCap {
		clusters = clusters[:clusterCap]
	}

	var bucketLines strings.Builder
	for _, id := range []string{domain.BucketResolved, domain.BucketMissingCapability, domain.BucketBrokenLogic, domain.BucketMissingKnowledge} {
		bucketLines.WriteString(fmt.Sprintf("- %s: %s\n", id, domain.BucketLabels[id]))
	}

	systemPrompt := fmt.Sprintf(`You analyze failure statistics from a support bot's conversation topics and assign each topic to one bucket:
%s
For each topic, also give a short human label and a specific issue_category string naming the concrete issue.
Then, per bucket (1-3 only), produce recommendation objects. Recommendations do not need to be one-to-one with topics.
Each recommendation needs: topic (the issue-category label), count, problem_statement, root_cause, recommendation, goal_alignment (1-10 relevance to the business goals), priority (Low|Medium|High|Critical), kpi_to_watch, examples (up to 3 short excerpts).

Respond with JSON only (no markdown):
{"topic_assignments": [{"topic": "...", "bucket": "1", "label": "...", "issue_category": "..."}],
 "recommendations": {"1": [{"topic": "...", "count": 4, "problem_statement": "...", "root_cause": "...", "recommendation": "...", "goal_alignment": 8, "priority": "High", "kpi_to_watch": "...", "examples": ["..."]}], "2": [], "3": []}}`, bucketLines.String())

	var clusterLines strings.Builder
	for _, c := range clusters {
		clusterLines.WriteString(fmt.Sprintf("- topic: %s | total: %d | failure_rate: %.2f | negative_rate: %.2f | unresolved: %d | drop_off: %d\n",
			strings.TrimSpace(c.Topic), c.Total, c.FailureRate, c.NegativeRate,
			c.StatusCounts[domain.StatusUnresolved], c.StatusCounts[domain.StatusUserDropOff]))
		for _, q := range c.SampleQueries {
			clusterLines.WriteString(fmt.Sprintf("  sample: %s\n", truncate(q, maxQueryChars)))
		}
	}

	userPrompt := "Business goals:\n" + truncate(strings.TrimSpace(businessGoals), maxBusinessGoalsChars) +
		"\n\nBot capabilities:\n" + truncate(strings.TrimSpace(capabilitySummary), maxCapabilitySummaryChars) +
		"\n\nTop failing topics:\n" + clusterLines.String()
	return systemPrompt, userPrompt
}

// BuildDetailPrompts renders the row-level stage prompts from the sampled
// failure rows. The sample is bounded upstream; each line carries the row's
// original index, which the response must echo back in row_indices.
func BuildDetailPrompts(sampled []SampledRow, businessGoals string) (string, string) {
	systemPrompt := `You analyze individual failed or negative support-bot conversations and group them into findings.
Buckets: 1 = missing capability, 2 = broken existing logic, 3 = missing or incorrect knowledge content.
Per bucket, produce recommendation objects. Each must list row_indices: the exact index values of the conversations it covers, copied from the input. Never invent indices.
Each recommendation needs: topic, row_indices, count, problem_statement, root_cause, recommendation, goal_alignment (1-10), priority (Low|Medium|High|Critical), kpi_to_watch, examples (up to 3 short excerpts).

Respond with JSON only (no markdown):
{"recommendations": {"1": [{"topic": "...", "row_indices": [0, 4], "count": 2, "problem_statement": "...", "root_cause": "...", "recommendation": "...", "goal_alignment": 7, "priority": "Medium", "kpi_to_watch": "...", "examples": ["..."]}], "2": [], "3": []}}`

	var rowLines strings.Builder
	for _, s := range sampled {
		rowLines.WriteString(fmt.Sprintf("index:%d | topic: %s | status: %s | sentiment: %s | query: %s",
			s.Index, strings.TrimSpace(s.Row.Topic), s.Row.Status, s.Row.Sentiment, truncate(s.Row.Query, maxQueryChars)))
		if reason := strings.TrimSpace(s.Row.StatusReasoning); reason != "" {
			rowLines.WriteString(" | reasoning: " + truncate(reason, maxReasoningChars))
		}
		rowLines.WriteString("\n")
	}

	userPrompt := "Business goals:\n" + truncate(strings.TrimSpace(businessGoals), maxBusinessGoalsChars) +
		"\n\nFailed conversations:\n" + rowLines.String()
	return systemPrompt, userPrompt
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
