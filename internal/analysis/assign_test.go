package analysis

import (
	"testing"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

func TestAssignBucketsClusterPass(t *testing.T) {
	rows := []domain.ConversationRow{
		row("login", domain.StatusUnresolved, domain.SentimentNegative),
		row("refund", domain.StatusResolved, domain.SentimentPositive),
		row("unknown topic", domain.StatusResolved, domain.SentimentNeutral),
	}
	assignments := map[string]TopicAssignment{
		"login": {Bucket: domain.BucketBrokenLogic, Label: "Broken login"},
	}

	outcome := AssignBuckets(rows, assignments, map[string][]domain.BucketRecommendation{})

	if rows[0].Bucket != domain.BucketBrokenLogic || rows[0].BucketLabel != "Broken login" {
		t.Fatalf("mapped row not assigned: %+v", rows[0])
	}
	if rows[1].Bucket != domain.BucketResolved || rows[2].Bucket != domain.BucketResolved {
		t.Fatalf("unmapped rows must stay in bucket 0: %+v %+v", rows[1], rows[2])
	}
	if rows[1].BucketLabel != domain.BucketLabels[domain.BucketResolved] {
		t.Fatalf("default label wrong: %q", rows[1].BucketLabel)
	}
	if outcome.MappedRows != 1 {
		t.Fatalf("MappedRows = %d, want 1", outcome.MappedRows)
	}
	if outcome.UnmappedTopics != 2 {
		t.Fatalf("UnmappedTopics = %d, want 2", outcome.UnmappedTopics)
	}
}

func TestAssignBucketsDetailOverridesCluster(t *testing.T) {
	rows := []domain.ConversationRow{
		row("login", domain.StatusUnresolved, domain.SentimentNegative),
		row("login", domain.StatusUnresolved, domain.SentimentNegative),
	}
	assignments := map[string]TopicAssignment{
		"login": {Bucket: domain.BucketBrokenLogic, Label: "Broken login"},
	}
	recs := map[string][]domain.BucketRecommendation{
		domain.BucketMissingCapability: {
			{Topic: "password reset gap", RowIndices: []int{1}},
		},
	}

	AssignBuckets(rows, assignments, recs)

	if rows[0].Bucket != domain.BucketBrokenLogic {
		t.Fatalf("unclaimed row should keep cluster bucket, got %q", rows[0].Bucket)
	}
	if rows[1].Bucket != domain.BucketMissingCapability {
		t.Fatalf("detail-claimed row must end in bucket 1, got %q", rows[1].Bucket)
	}
}

func TestAssignBucketsDropsOutOfRangeIndices(t *testing.T) {
	rows := make([]domain.ConversationRow, 10)
	for i := range rows {
		rows[i] = row("t", domain.StatusResolved, domain.SentimentNeutral)
	}
	recs := map[string][]domain.BucketRecommendation{
		domain.BucketMissingKnowledge: {
			{Topic: "kb gap", RowIndices: []int{2, 999, -1, 7}, Count: 4},
		},
	}

	outcome := AssignBuckets(rows, nil, recs)

	got := recs[domain.BucketMissingKnowledge][0]
	if len(got.RowIndices) != 2 || got.RowIndices[0] != 2 || got.RowIndices[1] != 7 {
		t.Fatalf("indices not filtered: %v", got.RowIndices)
	}
	if got.Count != 2 {
		t.Fatalf("count not rewritten to filtered length: %d", got.Count)
	}
	if outcome.DroppedIndices != 2 {
		t.Fatalf("DroppedIndices = %d, want 2", outcome.DroppedIndices)
	}
	if rows[2].Bucket != domain.BucketMissingKnowledge || rows[7].Bucket != domain.BucketMissingKnowledge {
		t.Fatalf("valid indices not applied: %+v %+v", rows[2], rows[7])
	}
}

func TestAssignBucketsResetsPreviousAssignment(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "x", Bucket: domain.BucketMissingCapability, BucketLabel: "stale", IssueCategory: "stale"},
	}
	AssignBuckets(rows, nil, nil)
	if rows[0].Bucket != domain.BucketResolved || rows[0].IssueCategory != "" {
		t.Fatalf("row state not reset: %+v", rows[0])
	}
}
