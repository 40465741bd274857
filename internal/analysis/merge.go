package analysis

import (
	"sort"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// MergeRecommendations deduplicates each bucket's recommendation list by
// normalized topic. Input lists carry strategic-stage entries before
// detail-stage entries; on a topic collision the entry with the higher
// goal-alignment score wins, ties favoring the later-inserted (detail) entry.
// Each bucket's output is sorted descending by goal-alignment score, so the
// final result never holds two entries with the same normalized topic in one
// bucket.
func MergeRecommendations(recsByBucket map[string][]domain.BucketRecommendation) map[string][]domain.BucketRecommendation {
	out := make(map[string][]domain.BucketRecommendation, len(domain.ActionBuckets))
	for _, bucket := range domain.ActionBuckets {
		out[bucket] = mergeBucket(recsByBucket[bucket])
	}
	return out
}

func mergeBucket(recs []domain.BucketRecommendation) []domain.BucketRecommendation {
	byTopic := make(map[string]int)
	var merged []domain.BucketRecommendation

	for _, rec := range recs {
		key := domain.NormalizeTopic(rec.Topic)
		if pos, ok := byTopic[key]; ok {
			if rec.GoalAlignment >= merged[pos].GoalAlignment {
				merged[pos] = rec
			}
			continue
		}
		byTopic[key] = len(merged)
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].GoalAlignment > merged[j].GoalAlignment
	})
	return merged
}
