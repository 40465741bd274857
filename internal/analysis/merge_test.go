package analysis

import (
	"testing"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

func TestMergeRecommendationsDeduplicatesByTopic(t *testing.T) {
	input := map[string][]domain.BucketRecommendation{
		domain.BucketMissingCapability: {
			{Topic: "Password Reset", GoalAlignment: 6, Problem: "strategic"},
			{Topic: "order tracking", GoalAlignment: 4},
			{Topic: " password reset ", GoalAlignment: 8, Problem: "detail"},
		},
	}

	merged := MergeRecommendations(input)
	recs := merged[domain.BucketMissingCapability]
	if len(recs) != 2 {
		t.Fatalf("expected 2 merged recommendations, got %d", len(recs))
	}

	seen := make(map[string]bool)
	for _, rec := range recs {
		key := domain.NormalizeTopic(rec.Topic)
		if seen[key] {
			t.Fatalf("duplicate normalized topic %q in merged output", key)
		}
		seen[key] = true
	}
	if recs[0].GoalAlignment != 8 || recs[0].Problem != "detail" {
		t.Fatalf("higher-scored entry not kept: %+v", recs[0])
	}
}

func TestMergeRecommendationsTieFavorsLaterEntry(t *testing.T) {
	input := map[string][]domain.BucketRecommendation{
		domain.BucketBrokenLogic: {
			{Topic: "checkout", GoalAlignment: 7, Problem: "strategic version"},
			{Topic: "checkout", GoalAlignment: 7, Problem: "detail version"},
		},
	}
	merged := MergeRecommendations(input)
	recs := merged[domain.BucketBrokenLogic]
	if len(recs) != 1 {
		t.Fatalf("expected 1 merged recommendation, got %d", len(recs))
	}
	if recs[0].Problem != "detail version" {
		t.Fatalf("equal-score tie must keep the later entry, got %+v", recs[0])
	}
}

func TestMergeRecommendationsSortedByScore(t *testing.T) {
	input := map[string][]domain.BucketRecommendation{
		domain.BucketMissingKnowledge: {
			{Topic: "a", GoalAlignment: 3},
			{Topic: "b", GoalAlignment: 9},
			{Topic: "c", GoalAlignment: 6},
		},
	}
	merged := MergeRecommendations(input)
	recs := merged[domain.BucketMissingKnowledge]
	for i := 1; i < len(recs); i++ {
		if recs[i].GoalAlignment > recs[i-1].GoalAlignment {
			t.Fatalf("merged output not sorted descending by score: %v", recs)
		}
	}
	if recs[0].Topic != "b" {
		t.Fatalf("top entry should be %q, got %q", "b", recs[0].Topic)
	}
}

func TestMergeRecommendationsEmptyBuckets(t *testing.T) {
	merged := MergeRecommendations(map[string][]domain.BucketRecommendation{})
	for _, bucket := range domain.ActionBuckets {
		if len(merged[bucket]) != 0 {
			t.Fatalf("bucket %s should be empty", bucket)
		}
	}
}
