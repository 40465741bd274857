package domain

// ClusterSummary aggregates all rows sharing a normalized topic string.
type ClusterSummary struct {
	Topic           string
	Total           int
	StatusCounts    map[string]int
	SentimentCounts map[string]int
	FailureRate     float64
	NegativeRate    float64
	SampleQueries   []string
	RowIndices      []int
}

// BucketRecommendation is a named, actionable finding produced by an LLM
// stage. RowIndices, when present, are original row indices the finding
// explicitly covers; they are range-filtered before use and Count is kept
// equal to the filtered length.
type BucketRecommendation struct {
	Topic          string
	RowIndices     []int
	Count          int
	Problem        string
	RootCause      string
	Recommendation string
	GoalAlignment  int
	Priority       string
	KPI            string
	Examples       []string
}

// Recommendation priorities.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// AnalysisResult is the pipeline's sole externally visible output.
type AnalysisResult struct {
	Rows            []ConversationRow
	Recommendations map[string][]BucketRecommendation
	Clusters        []ClusterSummary
	TotalRows       int
	Log             *AnalysisLog
}

// BucketDistribution counts rows per bucket id.
func (r *AnalysisResult) BucketDistribution() map[string]int {
	dist := make(map[string]int, 4)
	for _, row := range r.Rows {
		dist[row.Bucket]++
	}
	return dist
}
