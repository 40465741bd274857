package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// Stats counts what the reader saw versus what survived filtering. The
// pipeline's run log records both to compute data loss.
type Stats struct {
	RecordsRead int
	Skipped     int
}

// columnAliases maps the header names seen across transcript exports to row
// fields.
var columnAliases = map[string]string{
	"topic":             "topic",
	"conversation_topic": "topic",
	"query":             "query",
	"user_query":        "query",
	"status":            "status",
	"resolution_status": "status",
	"sentiment":         "sentiment",
	"user_sentiment":    "sentiment",
	"status_reasoning":  "reasoning",
	"reasoning":         "reasoning",
}

// ReadTranscriptFile parses a delimited transcript export into typed rows.
func ReadTranscriptFile(path string) ([]domain.ConversationRow, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()
	return ReadTranscripts(f)
}

// ReadTranscripts parses CSV transcript records. The first record is the
// header; unknown columns are ignored and missing optional fields default
// (sentiment to neutral). Records with neither topic nor query are skipped.
func ReadTranscripts(r io.Reader) ([]domain.ConversationRow, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, Stats{}, nil
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read transcript header: %w", err)
	}

	fieldByCol := make(map[int]string)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if field, ok := columnAliases[name]; ok {
			fieldByCol[i] = field
		}
	}
	if len(fieldByCol) == 0 {
		return nil, Stats{}, fmt.Errorf("transcript header has no recognized columns: %v", header)
	}

	var rows []domain.ConversationRow
	stats := Stats{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.RecordsRead++
			stats.Skipped++
			log.Printf("ingest skipping malformed record: %v", err)
			continue
		}
		stats.RecordsRead++

		var row domain.ConversationRow
		for i, value := range record {
			switch fieldByCol[i] {
			case "topic":
				row.Topic = strings.TrimSpace(value)
			case "query":
				row.Query = strings.TrimSpace(value)
			case "status":
				row.Status = normalizeStatus(value)
			case "sentiment":
				row.Sentiment = normalizeSentiment(value)
			case "reasoning":
				row.StatusReasoning = strings.TrimSpace(value)
			}
		}
		if row.Topic == "" && row.Query == "" {
			stats.Skipped++
			continue
		}
		if row.Sentiment == "" {
			row.Sentiment = domain.SentimentNeutral
		}
		if row.Status == "" {
			row.Status = domain.StatusResolved
		}
		rows = append(rows, row)
	}
	return rows, stats, nil
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case domain.SentimentPositive:
		return domain.SentimentPositive
	case domain.SentimentNegative:
		return domain.SentimentNegative
	case domain.SentimentNeutral:
		return domain.SentimentNeutral
	default:
		return ""
	}
}
