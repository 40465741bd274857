package analysis

import "github.com/ritharam/bot-performance-analyzer/internal/domain"

// DefaultDetailSampleCap bounds the detail stage's row sample to respect the
// provider token budget.
const DefaultDetailSampleCap = 150

// SampledRow pairs a qualifying row with its original index in the full
// collection. The index is the contract used to re-attach detail-level
// recommendations to exact rows.
type SampledRow struct {
	Index int
	Row   domain.ConversationRow
}

// SampleFailureRows selects the prioritized subset of individually
// interesting rows: negative sentiment, unresolved, or user drop-off. When
// more than topN qualify, negative-sentiment rows are kept first, then
// unresolved, then drop-off, ties keeping original order. A row contributes
// once even when it matches more than one predicate.
func SampleFailureRows(rows []domain.ConversationRow, topN int) []SampledRow {
	if topN <= 0 {
		topN = DefaultDetailSampleCap
	}

	seen := make(map[int]bool)
	var sampled []SampledRow

	take := func(match func(domain.ConversationRow) bool) {
		for i, row := range rows {
			if seen[i] || !match(row) {
				continue
			}
			seen[i] = true
			sampled = append(sampled, SampledRow{Index: i, Row: row})
		}
	}

	take(func(r domain.ConversationRow) bool { return r.Sentiment == domain.SentimentNegative })
	take(func(r domain.ConversationRow) bool { return r.Status == domain.StatusUnresolved })
	take(func(r domain.ConversationRow) bool { return r.Status == domain.StatusUserDropOff })

	if len(sampled) > topN {
		sampled = sampled[:topN]
	}
	return sampled
}
