package analysis

import (
	"sort"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

const maxSampleQueries = 3

// BuildClusterSummaries groups rows by normalized topic and computes per-
// cluster failure and sentiment statistics. The result is sorted descending
// by failure rate. Empty input yields an empty (nil) result.
func BuildClusterSummaries(rows []domain.ConversationRow) []domain.ClusterSummary {
	byTopic := make(map[string]*domain.ClusterSummary)
	var order []string

	for i, row := range rows {
		key := domain.NormalizeTopic(row.Topic)
		cluster, ok := byTopic[key]
		if !ok {
			cluster = &domain.ClusterSummary{
				Topic:           row.Topic,
				StatusCounts:    make(map[string]int),
				SentimentCounts: make(map[string]int),
			}
			byTopic[key] = cluster
			order = append(order, key)
		}
		cluster.Total++
		cluster.StatusCounts[row.Status]++
		cluster.SentimentCounts[row.Sentiment]++
		cluster.RowIndices = append(cluster.RowIndices, i)
	}

	out := make([]domain.ClusterSummary, 0, len(order))
	for _, key := range order {
		cluster := byTopic[key]
		failures := cluster.StatusCounts[domain.StatusUnresolved] + cluster.StatusCounts[domain.StatusUserDropOff]
		cluster.FailureRate = float64(failures) / float64(cluster.Total)
		cluster.NegativeRate = float64(cluster.SentimentCounts[domain.SentimentNegative]) / float64(cluster.Total)
		cluster.SampleQueries = sampleQueries(rows, cluster.RowIndices)
		out = append(out, *cluster)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FailureRate > out[j].FailureRate
	})
	return out
}

// sampleQueries picks up to maxSampleQueries non-empty queries for a cluster,
// preferring unresolved rows.
func sampleQueries(rows []domain.ConversationRow, indices []int) []string {
	var samples []string
	for _, idx := range indices {
		if rows[idx].Status == domain.StatusUnresolved && rows[idx].Query != "" {
			samples = append(samples, rows[idx].Query)
			if len(samples) == maxSampleQueries {
				return samples
			}
		}
	}
	for _, idx := range indices {
		if len(samples) == maxSampleQueries {
			break
		}
		if rows[idx].Status != domain.StatusUnresolved && rows[idx].Query != "" {
			samples = append(samples, rows[idx].Query)
		}
	}
	return samples
}
