package analysis

import (
	"strings"
	"testing"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

func goodRec(topic string) domain.BucketRecommendation {
	return domain.BucketRecommendation{
		Topic:          topic,
		Problem:        "Users repeatedly fail to complete this flow",
		Recommendation: "Fix the validation logic and add a retry path",
		Examples:       []string{"example excerpt"},
		GoalAlignment:  7,
	}
}

func findCheck(t *testing.T, checks []domain.ValidationCheck, name string) domain.ValidationCheck {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q missing from %v", name, checks)
	return domain.ValidationCheck{}
}

func TestValidateAllPass(t *testing.T) {
	rows := []domain.ConversationRow{row("a", domain.StatusResolved, domain.SentimentPositive)}
	merged := map[string][]domain.BucketRecommendation{
		domain.BucketMissingCapability: {goodRec("finding")},
	}
	checks := Validate(rows, BuildClusterSummaries(rows), nil, merged)
	if len(checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(checks))
	}
	for _, c := range checks {
		if c.Status != domain.ValidationPass {
			t.Fatalf("check %s = %s (%s), want Pass", c.Name, c.Status, c.Message)
		}
	}
}

func TestValidateIndexValidityFail(t *testing.T) {
	rows := make([]domain.ConversationRow, 5)
	rec := goodRec("finding")
	rec.RowIndices = []int{2, 9}
	merged := map[string][]domain.BucketRecommendation{domain.BucketBrokenLogic: {rec}}

	check := findCheck(t, Validate(rows, nil, nil, merged), "index_validity")
	if check.Status != domain.ValidationFail {
		t.Fatalf("out-of-range index must Fail, got %s", check.Status)
	}
	if !strings.Contains(check.Message, "9") {
		t.Fatalf("message should name the bad index: %q", check.Message)
	}
}

func TestValidateBucketConsistencyWarning(t *testing.T) {
	// A cluster with a 50% failure rate left in bucket 0.
	rows := []domain.ConversationRow{
		row("flaky", domain.StatusUnresolved, domain.SentimentNegative),
		row("flaky", domain.StatusResolved, domain.SentimentNeutral),
	}
	clusters := BuildClusterSummaries(rows)

	check := findCheck(t, Validate(rows, clusters, nil, nil), "bucket_consistency")
	if check.Status != domain.ValidationWarning {
		t.Fatalf("suspicious bucket-0 cluster must Warn, got %s", check.Status)
	}

	// The same cluster explicitly mapped out of bucket 0 passes.
	assignments := map[string]TopicAssignment{"flaky": {Bucket: domain.BucketBrokenLogic}}
	check = findCheck(t, Validate(rows, clusters, assignments, nil), "bucket_consistency")
	if check.Status != domain.ValidationPass {
		t.Fatalf("mapped cluster must not Warn, got %s", check.Status)
	}
}

func TestValidateEvidencePresenceFail(t *testing.T) {
	rec := goodRec("finding")
	rec.Examples = nil
	merged := map[string][]domain.BucketRecommendation{domain.BucketMissingKnowledge: {rec}}

	check := findCheck(t, Validate(nil, nil, nil, merged), "evidence_presence")
	if check.Status != domain.ValidationFail {
		t.Fatalf("recommendation without examples must Fail, got %s", check.Status)
	}
}

func TestValidateRecommendationQualityWarning(t *testing.T) {
	short := goodRec("short")
	short.Recommendation = "do it"
	noVerb := goodRec("no verb")
	noVerb.Recommendation = "this text is long enough but entirely passive in nature"

	merged := map[string][]domain.BucketRecommendation{
		domain.BucketMissingCapability: {short, noVerb},
	}
	check := findCheck(t, Validate(nil, nil, nil, merged), "recommendation_quality")
	if check.Status != domain.ValidationWarning {
		t.Fatalf("weak recommendations must Warn, got %s", check.Status)
	}
	if !strings.Contains(check.Message, "short") || !strings.Contains(check.Message, "no verb") {
		t.Fatalf("message should name both weak findings: %q", check.Message)
	}
}
