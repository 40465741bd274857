package domain

import "strings"

// Resolution statuses as they appear in transcript exports. Anything not in
// this list is treated as a resolved state.
const (
	StatusUnresolved          = "unresolved"
	StatusPartiallyResolved   = "partially_resolved"
	StatusResolutionAttempted = "resolution_attempted"
	StatusUserDropOff         = "user_drop_off"
	StatusResolved            = "resolved"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Buckets are the four mutually exclusive classification outcomes for a row.
const (
	BucketResolved          = "0"
	BucketMissingCapability = "1"
	BucketBrokenLogic       = "2"
	BucketMissingKnowledge  = "3"
)

// BucketLabels maps bucket ids to their display labels.
var BucketLabels = map[string]string{
	BucketResolved:          "Resolved / Out of Scope",
	BucketMissingCapability: "Missing Capability",
	BucketBrokenLogic:       "Broken Existing Logic",
	BucketMissingKnowledge:  "Missing / Incorrect Knowledge",
}

// ActionBuckets are the bucket ids that carry recommendations, in report order.
var ActionBuckets = []string{BucketMissingCapability, BucketBrokenLogic, BucketMissingKnowledge}

// ConversationRow is one transcript record. Its identity is its index in the
// input collection for the lifetime of one analysis run. Topic text is free
// text from the export and is only ever matched after normalization.
type ConversationRow struct {
	Topic           string
	Query           string
	Status          string
	Sentiment       string
	StatusReasoning string

	// Assigned by the pipeline.
	Bucket        string
	BucketLabel   string
	IssueCategory string
}

// IsFailure reports whether the row counts toward a cluster's failure rate.
func (r ConversationRow) IsFailure() bool {
	return r.Status == StatusUnresolved || r.Status == StatusUserDropOff
}

// NormalizeTopic is the matching key for topics: lower-cased and trimmed.
// Original casing is preserved for display.
func NormalizeTopic(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
