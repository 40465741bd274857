package analysis

import (
	"fmt"
	"strings"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

const (
	suspiciousFailureRate  = 0.15
	suspiciousNegativeRate = 0.10
	minRecommendationChars = 20
)

// actionVerbs is the keyword set a recommendation text must touch to count as
// actionable.
var actionVerbs = []string{"implement", "update", "fix", "add", "create", "optimize", "improve", "expand"}

// Validate runs the post-hoc consistency checks over a completed analysis.
// It never halts anything: the checks only annotate the run log.
func Validate(rows []domain.ConversationRow, clusters []domain.ClusterSummary, assignments map[string]TopicAssignment, merged map[string][]domain.BucketRecommendation) []domain.ValidationCheck {
	return []domain.ValidationCheck{
		checkIndexValidity(len(rows), merged),
		checkBucketConsistency(clusters, assignments),
		checkEvidencePresence(merged),
		checkRecommendationQuality(merged),
	}
}

func checkIndexValidity(rowCount int, merged map[string][]domain.BucketRecommendation) domain.ValidationCheck {
	var violations []string
	for _, bucket := range domain.ActionBuckets {
		for _, rec := range merged[bucket] {
			for _, idx := range rec.RowIndices {
				if idx < 0 || idx >= rowCount {
					violations = append(violations, fmt.Sprintf("%q index %d out of [0,%d)", rec.Topic, idx, rowCount))
				}
			}
		}
	}
	if len(violations) > 0 {
		return domain.ValidationCheck{
			Name:    "index_validity",
			Status:  domain.ValidationFail,
			Message: strings.Join(violations, "; "),
		}
	}
	return domain.ValidationCheck{Name: "index_validity", Status: domain.ValidationPass, Message: "all recommendation indices in range"}
}

// checkBucketConsistency flags clusters left in bucket "0" whose failure or
// negative rate is too high for a resolved classification to be plausible.
func checkBucketConsistency(clusters []domain.ClusterSummary, assignments map[string]TopicAssignment) domain.ValidationCheck {
	var suspicious []string
	for _, c := range clusters {
		bucket := domain.BucketResolved
		if a, ok := assignments[domain.NormalizeTopic(c.Topic)]; ok {
			bucket = a.Bucket
		}
		if bucket != domain.BucketResolved {
			continue
		}
		if c.FailureRate > suspiciousFailureRate || c.NegativeRate > suspiciousNegativeRate {
			suspicious = append(suspicious, fmt.Sprintf("%q failure_rate=%.2f negative_rate=%.2f", c.Topic, c.FailureRate, c.NegativeRate))
		}
	}
	if len(suspicious) > 0 {
		return domain.ValidationCheck{
			Name:    "bucket_consistency",
			Status:  domain.ValidationWarning,
			Message: "clusters in bucket 0 with high failure or negative rates: " + strings.Join(suspicious, "; "),
		}
	}
	return domain.ValidationCheck{Name: "bucket_consistency", Status: domain.ValidationPass, Message: "bucket 0 clusters statistically consistent"}
}

func checkEvidencePresence(merged map[string][]domain.BucketRecommendation) domain.ValidationCheck {
	var missing []string
	for _, bucket := range domain.ActionBuckets {
		for _, rec := range merged[bucket] {
			if len(rec.Examples) == 0 {
				missing = append(missing, fmt.Sprintf("bucket %s %q", bucket, rec.Topic))
			}
		}
	}
	if len(missing) > 0 {
		return domain.ValidationCheck{
			Name:    "evidence_presence",
			Status:  domain.ValidationFail,
			Message: "recommendations without examples: " + strings.Join(missing, "; "),
		}
	}
	return domain.ValidationCheck{Name: "evidence_presence", Status: domain.ValidationPass, Message: "every recommendation carries examples"}
}

func checkRecommendationQuality(merged map[string][]domain.BucketRecommendation) domain.ValidationCheck {
	var weak []string
	for _, bucket := range domain.ActionBuckets {
		for _, rec := range merged[bucket] {
			if len(rec.Recommendation) < minRecommendationChars || len(rec.Problem) < minRecommendationChars {
				weak = append(weak, fmt.Sprintf("bucket %s %q too short", bucket, rec.Topic))
				continue
			}
			if !containsActionVerb(rec.Recommendation) {
				weak = append(weak, fmt.Sprintf("bucket %s %q lacks an action verb", bucket, rec.Topic))
			}
		}
	}
	if len(weak) > 0 {
		return domain.ValidationCheck{
			Name:    "recommendation_quality",
			Status:  domain.ValidationWarning,
			Message: strings.Join(weak, "; "),
		}
	}
	return domain.ValidationCheck{Name: "recommendation_quality", Status: domain.ValidationPass, Message: "recommendation texts actionable"}
}

func containsActionVerb(text string) bool {
	lower := strings.ToLower(text)
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
