package ingest

import (
	"strings"
	"testing"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

func TestReadTranscriptsHeaderAliases(t *testing.T) {
	input := strings.Join([]string{
		"Conversation_Topic,User_Query,Resolution_Status,User_Sentiment,Status_Reasoning",
		`Login Issue,"I can't log in",Unresolved,negative,token expired`,
		`Refund,Where is my refund,Resolved,positive,`,
	}, "\n")

	rows, stats, err := ReadTranscripts(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTranscripts failed: %v", err)
	}
	if stats.RecordsRead != 2 || stats.Skipped != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Topic != "Login Issue" || rows[0].Status != domain.StatusUnresolved || rows[0].Sentiment != domain.SentimentNegative {
		t.Fatalf("row 0 mismatch: %+v", rows[0])
	}
	if rows[0].StatusReasoning != "token expired" {
		t.Fatalf("reasoning not mapped: %+v", rows[0])
	}
}

func TestReadTranscriptsNormalizesStatus(t *testing.T) {
	input := "topic,query,status,sentiment\n" +
		"a,q1,User Drop-Off,neutral\n" +
		"b,q2,PARTIALLY RESOLVED,positive\n"

	rows, _, err := ReadTranscripts(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTranscripts failed: %v", err)
	}
	if rows[0].Status != domain.StatusUserDropOff {
		t.Fatalf("status = %q, want %q", rows[0].Status, domain.StatusUserDropOff)
	}
	if rows[1].Status != domain.StatusPartiallyResolved {
		t.Fatalf("status = %q, want %q", rows[1].Status, domain.StatusPartiallyResolved)
	}
}

func TestReadTranscriptsSkipsAndDefaults(t *testing.T) {
	input := "topic,query,status,sentiment\n" +
		",,,\n" + // skipped: no topic, no query
		"billing,how much,,bogus-sentiment\n"

	rows, stats, err := ReadTranscripts(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTranscripts failed: %v", err)
	}
	if stats.RecordsRead != 2 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Sentiment != domain.SentimentNeutral {
		t.Fatalf("unknown sentiment must default to neutral, got %q", rows[0].Sentiment)
	}
	if rows[0].Status != domain.StatusResolved {
		t.Fatalf("empty status must default to resolved, got %q", rows[0].Status)
	}
}

func TestReadTranscriptsUnrecognizedHeader(t *testing.T) {
	if _, _, err := ReadTranscripts(strings.NewReader("foo,bar\n1,2\n")); err == nil {
		t.Fatal("expected error for unrecognized header")
	}
}

func TestReadTranscriptsEmptyInput(t *testing.T) {
	rows, stats, err := ReadTranscripts(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if len(rows) != 0 || stats.RecordsRead != 0 {
		t.Fatalf("expected empty result, got rows=%d stats=%+v", len(rows), stats)
	}
}
