package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// Store is the append-only analysis-history sink. Append is the only
// mutation; finalized run logs are never read-modify-written.
type Store struct {
	db *sql.DB
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id           TEXT NOT NULL,
		started_at       DATETIME NOT NULL,
		finished_at      DATETIME NOT NULL,
		records_received INTEGER NOT NULL DEFAULT 0,
		rows_analyzed    INTEGER NOT NULL DEFAULT 0,
		cluster_count    INTEGER NOT NULL DEFAULT 0,
		bucket_0         INTEGER NOT NULL DEFAULT 0,
		bucket_1         INTEGER NOT NULL DEFAULT 0,
		bucket_2         INTEGER NOT NULL DEFAULT 0,
		bucket_3         INTEGER NOT NULL DEFAULT 0,
		data_loss_pct    REAL NOT NULL DEFAULT 0,
		error_count      INTEGER NOT NULL DEFAULT 0,
		log_json         TEXT NOT NULL DEFAULT '{}',
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_run_id ON analysis_runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_analysis_runs_started_at ON analysis_runs(started_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes one finalized run log as a new history row.
func (s *Store) Append(runLog *domain.AnalysisLog) error {
	if runLog == nil {
		return nil
	}
	logJSON, err := json.Marshal(runLog)
	if err != nil {
		return fmt.Errorf("marshal run log: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO analysis_runs (run_id, started_at, finished_at, records_received, rows_analyzed,
		 cluster_count, bucket_0, bucket_1, bucket_2, bucket_3, data_loss_pct, error_count, log_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runLog.RunID, runLog.StartedAt, runLog.FinishedAt, runLog.RecordsReceived, runLog.RowsAnalyzed,
		runLog.ClusterCount,
		runLog.BucketDistribution[domain.BucketResolved],
		runLog.BucketDistribution[domain.BucketMissingCapability],
		runLog.BucketDistribution[domain.BucketBrokenLogic],
		runLog.BucketDistribution[domain.BucketMissingKnowledge],
		runLog.DataLossPct, len(runLog.Errors), string(logJSON),
	)
	return err
}

// RunRecord is one history row as read back for listing.
type RunRecord struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsAnalyzed int
	ClusterCount int
	ErrorCount   int
}

// RecentRuns lists the newest runs, most recent first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT run_id, started_at, finished_at, rows_analyzed, cluster_count, error_count
		 FROM analysis_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.RowsAnalyzed, &r.ClusterCount, &r.ErrorCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
