package analysis

import (
	"testing"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

func TestResolveIssueCategoriesExplicit(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "login", Bucket: domain.BucketBrokenLogic},
	}
	assignments := map[string]TopicAssignment{
		"login": {Bucket: domain.BucketBrokenLogic, IssueCategory: "SSO redirect loop"},
	}
	merged := map[string][]domain.BucketRecommendation{
		domain.BucketBrokenLogic: {{Topic: "something else", GoalAlignment: 9}},
	}

	ResolveIssueCategories(rows, assignments, merged)
	if rows[0].IssueCategory != "SSO redirect loop" {
		t.Fatalf("explicit category must win, got %q", rows[0].IssueCategory)
	}
}

func TestResolveIssueCategoriesIndexOverlap(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "shipping delay", Bucket: domain.BucketMissingCapability}, // 0
		{Topic: "shipping delay", Bucket: domain.BucketMissingCapability}, // 1
	}
	merged := map[string][]domain.BucketRecommendation{
		domain.BucketMissingCapability: {
			{Topic: "proactive delay alerts", RowIndices: []int{1}, GoalAlignment: 5},
			{Topic: "unrelated", GoalAlignment: 9},
		},
	}

	ResolveIssueCategories(rows, nil, merged)
	// Index 1 belongs to the "shipping delay" cluster, so the whole cluster
	// resolves to that recommendation.
	for i := range rows {
		if rows[i].IssueCategory != "proactive delay alerts" {
			t.Fatalf("row %d category = %q, want index-overlap winner", i, rows[i].IssueCategory)
		}
	}
}

func TestResolveIssueCategoriesKeywordScoring(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "password_reset_failure", Bucket: domain.BucketBrokenLogic},
	}
	merged := map[string][]domain.BucketRecommendation{
		domain.BucketBrokenLogic: {
			{Topic: "checkout timeout", GoalAlignment: 9},
			{Topic: "password reset broken", GoalAlignment: 4},
		},
	}

	ResolveIssueCategories(rows, nil, merged)
	if rows[0].IssueCategory != "password reset broken" {
		t.Fatalf("keyword scoring should pick the token-overlapping topic, got %q", rows[0].IssueCategory)
	}
}

func TestResolveIssueCategoriesTieBreakIsLexical(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "billing dispute", Bucket: domain.BucketMissingKnowledge},
	}
	// Both candidates share exactly one token with the cluster topic.
	merged := map[string][]domain.BucketRecommendation{
		domain.BucketMissingKnowledge: {
			{Topic: "zany billing docs", GoalAlignment: 5},
			{Topic: "adjust billing docs", GoalAlignment: 5},
		},
	}

	ResolveIssueCategories(rows, nil, merged)
	if rows[0].IssueCategory != "adjust billing docs" {
		t.Fatalf("equal-score tie must break to lexically smallest topic, got %q", rows[0].IssueCategory)
	}
}

func TestResolveIssueCategoriesFallbackToTopScored(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "zzz", Bucket: domain.BucketMissingCapability},
	}
	merged := map[string][]domain.BucketRecommendation{
		domain.BucketMissingCapability: {
			{Topic: "top finding", GoalAlignment: 9},
			{Topic: "lesser finding", GoalAlignment: 2},
		},
	}

	ResolveIssueCategories(rows, nil, merged)
	if rows[0].IssueCategory != "top finding" {
		t.Fatalf("all-zero scores must fall back to top-scored recommendation, got %q", rows[0].IssueCategory)
	}
}

func TestResolveIssueCategoriesAlwaysTerminates(t *testing.T) {
	rows := []domain.ConversationRow{
		{Topic: "anything", Bucket: domain.BucketBrokenLogic},
		{Topic: "resolved row", Bucket: domain.BucketResolved},
	}
	// No assignments, no recommendations at all.
	ResolveIssueCategories(rows, nil, map[string][]domain.BucketRecommendation{})

	if rows[0].IssueCategory == "" {
		t.Fatal("bucketed row must always receive some issue category")
	}
	if rows[1].IssueCategory != "" {
		t.Fatalf("bucket-0 rows never receive a category, got %q", rows[1].IssueCategory)
	}
}

func TestTopicSimilarityScoring(t *testing.T) {
	cases := []struct {
		cluster string
		rec     string
		want    int
	}{
		// shared token "password" (2) + substring hit (1)
		{"password issues", "password reset", 3},
		// containment: "login" inside "login failures" (3) + shared token (2) + substring (1)
		{"login", "login failures", 6},
		{"refund", "shipping delay", 0},
	}
	for _, tc := range cases {
		if got := topicSimilarity(tc.cluster, tc.rec); got != tc.want {
			t.Fatalf("topicSimilarity(%q, %q) = %d, want %d", tc.cluster, tc.rec, got, tc.want)
		}
	}
}

func TestTopicTokens(t *testing.T) {
	tokens := topicTokens("login_issue, password-reset ok")
	want := []string{"login", "issue", "password", "reset"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", tokens, want)
		}
	}
}
