package analysis

import (
	"strings"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// ResolveIssueCategories stamps every row in a non-zero bucket with the issue
// category of the recommendation it belongs to. Rows in bucket "0" never
// receive one. Resolution is per cluster topic, three tiers, first match wins:
//
//  1. an explicit issue_category from the strategic stage for this topic
//  2. a merged recommendation whose explicit indices claim a row of this topic
//  3. keyword-similarity scoring between the topic and candidate topics
//
// and when all scores are zero, the bucket's top-scored recommendation. The
// heuristic is best-effort; the only hard contract is that every bucketed row
// gets some value. Ties at the same top score break to the lexicographically
// smallest normalized recommendation topic, which keeps reruns deterministic.
func ResolveIssueCategories(rows []domain.ConversationRow, assignments map[string]TopicAssignment, merged map[string][]domain.BucketRecommendation) {
	// Topics claimed per recommendation topic, for tier 2.
	claimed := claimedTopics(rows, merged)

	type cacheKey struct {
		topic  string
		bucket string
	}
	cache := make(map[cacheKey]string)

	for i := range rows {
		if rows[i].Bucket == domain.BucketResolved {
			rows[i].IssueCategory = ""
			continue
		}
		key := cacheKey{domain.NormalizeTopic(rows[i].Topic), rows[i].Bucket}
		category, ok := cache[key]
		if !ok {
			category = resolveForTopic(key.topic, rows[i].Bucket, assignments, merged[rows[i].Bucket], claimed)
			cache[key] = category
		}
		rows[i].IssueCategory = category
	}
}

// claimedTopics maps recommendation topic -> set of normalized row topics its
// explicit indices cover.
func claimedTopics(rows []domain.ConversationRow, merged map[string][]domain.BucketRecommendation) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	for _, recs := range merged {
		for _, rec := range recs {
			for _, idx := range rec.RowIndices {
				if idx < 0 || idx >= len(rows) {
					continue
				}
				set := out[rec.Topic]
				if set == nil {
					set = make(map[string]bool)
					out[rec.Topic] = set
				}
				set[domain.NormalizeTopic(rows[idx].Topic)] = true
			}
		}
	}
	return out
}

func resolveForTopic(normTopic, bucket string, assignments map[string]TopicAssignment, candidates []domain.BucketRecommendation, claimed map[string]map[string]bool) string {
	// Tier 1: explicit category from the strategic stage.
	if a, ok := assignments[normTopic]; ok && a.IssueCategory != "" {
		return a.IssueCategory
	}

	// Tier 2: index-overlap evidence.
	for _, rec := range candidates {
		if claimed[rec.Topic][normTopic] {
			return rec.Topic
		}
	}

	// Tier 3: keyword-similarity scoring, lexical tie-break on the
	// normalized candidate topic.
	bestScore := 0
	bestTopic := ""
	bestNorm := ""
	for _, rec := range candidates {
		score := topicSimilarity(normTopic, domain.NormalizeTopic(rec.Topic))
		norm := domain.NormalizeTopic(rec.Topic)
		if score > bestScore || (score == bestScore && score > 0 && norm < bestNorm) {
			bestScore = score
			bestTopic = rec.Topic
			bestNorm = norm
		}
	}
	if bestScore > 0 {
		return bestTopic
	}

	// Tier 4: the bucket's top-scored recommendation, or the bucket label
	// when the bucket produced no recommendations at all.
	if len(candidates) > 0 {
		return candidates[0].Topic
	}
	return domain.BucketLabels[bucket]
}

// topicSimilarity scores two normalized topic strings: 2 points per shared
// token, 3 points if one string contains the other, and 1 point per cluster
// token appearing as a substring of the candidate.
func topicSimilarity(clusterTopic, recTopic string) int {
	clusterTokens := topicTokens(clusterTopic)
	recTokens := topicTokens(recTopic)

	recSet := make(map[string]bool, len(recTokens))
	for _, tok := range recTokens {
		recSet[tok] = true
	}

	score := 0
	for _, tok := range clusterTokens {
		if recSet[tok] {
			score += 2
		}
		if strings.Contains(recTopic, tok) {
			score++
		}
	}
	if clusterTopic != "" && recTopic != "" &&
		(strings.Contains(clusterTopic, recTopic) || strings.Contains(recTopic, clusterTopic)) {
		score += 3
	}
	return score
}

// topicTokens splits a normalized topic on whitespace, underscores, hyphens
// and commas, keeping tokens longer than 2 characters.
func topicTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '_', '-', ',':
			return true
		}
		return false
	})
	var out []string
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}
