package analysis

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// Raw stage response shapes. LLM output is an untrusted external schema: every
// field is optional and indices arrive in whatever shape the model chose, so
// they are decoded leniently here and sanitized before domain types are built.

type rawTopicAssignment struct {
	Topic         string `json:"topic"`
	Bucket        string `json:"bucket"`
	Label         string `json:"label"`
	IssueCategory string `json:"issue_category"`
}

type rawRecommendation struct {
	Topic          string          `json:"topic"`
	RowIndices     json.RawMessage `json:"row_indices"`
	Count          int             `json:"count"`
	Problem        string          `json:"problem_statement"`
	RootCause      string          `json:"root_cause"`
	Recommendation string          `json:"recommendation"`
	GoalAlignment  float64         `json:"goal_alignment"`
	Priority       string          `json:"priority"`
	KPI            string          `json:"kpi_to_watch"`
	Examples       []string        `json:"examples"`
}

type rawStrategicResponse struct {
	TopicAssignments []rawTopicAssignment         `json:"topic_assignments"`
	Recommendations  map[string][]rawRecommendation `json:"recommendations"`
}

type rawDetailResponse struct {
	Recommendations map[string][]rawRecommendation `json:"recommendations"`
}

// TopicAssignment is the strategic stage's per-topic verdict.
type TopicAssignment struct {
	Bucket        string
	Label         string
	IssueCategory string
}

// StrategicResult is the parsed strategic-stage output. Assignments are keyed
// by normalized topic.
type StrategicResult struct {
	Assignments     map[string]TopicAssignment
	Recommendations map[string][]domain.BucketRecommendation
}

// DetailResult is the parsed detail-stage output.
type DetailResult struct {
	Recommendations map[string][]domain.BucketRecommendation
}

// EmptyStrategicResult is the degraded default when the strategic stage fails
// or returns something undecodable.
func EmptyStrategicResult() StrategicResult {
	return StrategicResult{
		Assignments:     make(map[string]TopicAssignment),
		Recommendations: emptyBucketLists(),
	}
}

// EmptyDetailResult is the degraded default for the detail stage.
func EmptyDetailResult() DetailResult {
	return DetailResult{Recommendations: emptyBucketLists()}
}

func emptyBucketLists() map[string][]domain.BucketRecommendation {
	out := make(map[string][]domain.BucketRecommendation, len(domain.ActionBuckets))
	for _, b := range domain.ActionBuckets {
		out[b] = nil
	}
	return out
}

// ParseStrategicResponse decodes the strategic stage's free-text output. A
// malformed response never raises: it degrades to the empty default so a
// single bad LLM reply cannot abort the run.
func ParseStrategicResponse(text string) StrategicResult {
	var raw rawStrategicResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		log.Printf("parse stage=strategic malformed response (degrading to empty): %v", err)
		return EmptyStrategicResult()
	}

	result := EmptyStrategicResult()
	for _, a := range raw.TopicAssignments {
		key := domain.NormalizeTopic(a.Topic)
		if key == "" {
			continue
		}
		bucket := strings.TrimSpace(a.Bucket)
		if _, ok := domain.BucketLabels[bucket]; !ok {
			continue
		}
		label := strings.TrimSpace(a.Label)
		if label == "" {
			label = domain.BucketLabels[bucket]
		}
		result.Assignments[key] = TopicAssignment{
			Bucket:        bucket,
			Label:         label,
			IssueCategory: strings.TrimSpace(a.IssueCategory),
		}
	}
	result.Recommendations = sanitizeRecommendations(raw.Recommendations)
	return result
}

// ParseDetailResponse decodes the detail stage's free-text output with the
// same degrade-to-empty policy as the strategic parser.
func ParseDetailResponse(text string) DetailResult {
	var raw rawDetailResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		log.Printf("parse stage=detail malformed response (degrading to empty): %v", err)
		return EmptyDetailResult()
	}
	return DetailResult{Recommendations: sanitizeRecommendations(raw.Recommendations)}
}

func sanitizeRecommendations(raw map[string][]rawRecommendation) map[string][]domain.BucketRecommendation {
	out := emptyBucketLists()
	for bucket, recs := range raw {
		bucket = strings.TrimSpace(bucket)
		if _, ok := out[bucket]; !ok {
			continue
		}
		for _, r := range recs {
			topic := strings.TrimSpace(r.Topic)
			if topic == "" {
				continue
			}
			indices := parseIndicesField(r.RowIndices)
			count := r.Count
			if len(indices) > 0 {
				count = len(indices)
			}
			out[bucket] = append(out[bucket], domain.BucketRecommendation{
				Topic:          topic,
				RowIndices:     indices,
				Count:          count,
				Problem:        strings.TrimSpace(r.Problem),
				RootCause:      strings.TrimSpace(r.RootCause),
				Recommendation: strings.TrimSpace(r.Recommendation),
				GoalAlignment:  clampGoalAlignment(r.GoalAlignment),
				Priority:       normalizePriority(r.Priority),
				KPI:            strings.TrimSpace(r.KPI),
				Examples:       trimExamples(r.Examples),
			})
		}
	}
	return out
}

// parseIndicesField accepts the index shapes models actually emit: [1, 2],
// ["1", "2"], "1,2", or mixed arrays. Non-integer entries are dropped.
func parseIndicesField(raw json.RawMessage) []int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var asInts []int
	if err := json.Unmarshal(raw, &asInts); err == nil {
		return asInts
	}

	var asAnySlice []any
	if err := json.Unmarshal(raw, &asAnySlice); err == nil {
		var out []int
		for _, v := range asAnySlice {
			switch x := v.(type) {
			case float64:
				if x == float64(int(x)) {
					out = append(out, int(x))
				}
			case string:
				if n, ok := parseIntToken(x); ok {
					out = append(out, n)
				}
			}
		}
		return out
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		var out []int
		for _, part := range strings.Split(asString, ",") {
			if n, ok := parseIntToken(part); ok {
				out = append(out, n)
			}
		}
		return out
	}

	return nil
}

func parseIntToken(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func clampGoalAlignment(v float64) int {
	n := int(v)
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "low":
		return domain.PriorityLow
	case "high":
		return domain.PriorityHigh
	case "critical":
		return domain.PriorityCritical
	default:
		return domain.PriorityMedium
	}
}

func trimExamples(examples []string) []string {
	var out []string
	for _, ex := range examples {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		out = append(out, truncate(ex, maxQueryChars))
		if len(out) == maxSampleQueries {
			break
		}
	}
	return out
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
