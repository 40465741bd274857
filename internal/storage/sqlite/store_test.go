package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "analyzer-test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func finalizedLog(start time.Time) *domain.AnalysisLog {
	runLog := domain.NewAnalysisLog(start)
	runLog.RecordsReceived = 100
	runLog.RowsAnalyzed = 95
	runLog.ClusterCount = 8
	runLog.BucketDistribution = map[string]int{
		domain.BucketResolved:          60,
		domain.BucketMissingCapability: 15,
		domain.BucketBrokenLogic:       12,
		domain.BucketMissingKnowledge:  8,
	}
	runLog.AddError("strategic stage degraded to empty: rate limited")
	runLog.Finalize(start.Add(30 * time.Second))
	return runLog
}

func TestStoreAppendAndRecentRuns(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.Append(finalizedLog(base.Add(time.Duration(i) * time.Hour))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Fatalf("runs not ordered newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
	if runs[0].RowsAnalyzed != 95 || runs[0].ClusterCount != 8 || runs[0].ErrorCount != 1 {
		t.Fatalf("run fields mismatch: %+v", runs[0])
	}
}

func TestStoreAppendPersistsBucketCounts(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	if err := store.Append(finalizedLog(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	var b0, b1, b2, b3 int
	var logJSON string
	err := db.QueryRow(`SELECT bucket_0, bucket_1, bucket_2, bucket_3, log_json FROM analysis_runs`).
		Scan(&b0, &b1, &b2, &b3, &logJSON)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if b0 != 60 || b1 != 15 || b2 != 12 || b3 != 8 {
		t.Fatalf("bucket counts = %d %d %d %d", b0, b1, b2, b3)
	}
	if logJSON == "" || logJSON == "{}" {
		t.Fatalf("log_json not persisted: %q", logJSON)
	}
}

func TestStoreAppendNilLogIsNoop(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	if err := store.Append(nil); err != nil {
		t.Fatalf("Append(nil) must be a no-op: %v", err)
	}
	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}
