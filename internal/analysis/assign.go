package analysis

import (
	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// AssignOutcome summarizes bucket assignment for the run log.
type AssignOutcome struct {
	MappedRows     int
	UnmappedTopics int
	OverriddenRows int
	DroppedIndices int
}

// AssignBuckets runs the two-pass bucket assignment over rows, in place.
//
// Pass 1 initializes every row to bucket "0" and applies the strategic
// stage's topic-to-bucket map by normalized topic. Pass 2 walks every
// recommendation carrying explicit row indices, drops out-of-range values
// (hallucination tolerance), rewrites the recommendation's count to the
// filtered length, and overwrites each referenced row's bucket. Pass 2 runs
// second so row-exact detail assignments always beat topic heuristics.
func AssignBuckets(rows []domain.ConversationRow, assignments map[string]TopicAssignment, recsByBucket map[string][]domain.BucketRecommendation) AssignOutcome {
	var outcome AssignOutcome

	unmapped := make(map[string]bool)
	for i := range rows {
		rows[i].Bucket = domain.BucketResolved
		rows[i].BucketLabel = domain.BucketLabels[domain.BucketResolved]
		rows[i].IssueCategory = ""

		key := domain.NormalizeTopic(rows[i].Topic)
		if a, ok := assignments[key]; ok {
			rows[i].Bucket = a.Bucket
			rows[i].BucketLabel = a.Label
			outcome.MappedRows++
		} else {
			unmapped[key] = true
		}
	}
	outcome.UnmappedTopics = len(unmapped)

	overridden := make(map[int]bool)
	for _, bucket := range domain.ActionBuckets {
		recs := recsByBucket[bucket]
		for i := range recs {
			if len(recs[i].RowIndices) == 0 {
				continue
			}
			valid := recs[i].RowIndices[:0]
			for _, idx := range recs[i].RowIndices {
				if idx < 0 || idx >= len(rows) {
					outcome.DroppedIndices++
					continue
				}
				valid = append(valid, idx)
			}
			recs[i].RowIndices = valid
			recs[i].Count = len(valid)

			for _, idx := range valid {
				rows[idx].Bucket = bucket
				rows[idx].BucketLabel = domain.BucketLabels[bucket]
				overridden[idx] = true
			}
		}
	}
	outcome.OverriddenRows = len(overridden)
	return outcome
}
