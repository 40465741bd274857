package domain

import (
	"fmt"
	"time"
)

// Validation check outcomes.
const (
	ValidationPass    = "Pass"
	ValidationFail    = "Fail"
	ValidationWarning = "Warning"
)

type ValidationCheck struct {
	Name    string
	Status  string
	Message string
}

// StageRecord captures timing and outcome of one pipeline stage.
type StageRecord struct {
	Name       string
	StartedAt  time.Time
	DurationMs int64
	Success    bool
	Error      string
	ItemsIn    int
	ItemsOut   int
}

// AnalysisLog is the append-only record of one analysis run. It is created at
// run start, built up stage by stage, and finalized exactly once at run end.
type AnalysisLog struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Input filtering.
	RecordsReceived int
	RecordsSkipped  int
	RowsAnalyzed    int

	// Clustering.
	ClusterCount    int
	TopFailureRate  float64
	SampledFailures int

	Stages []StageRecord

	// LLM output coverage.
	MappedTopics   int
	UnmappedTopics int
	OverriddenRows int
	DroppedIndices int

	BucketDistribution map[string]int
	Validations        []ValidationCheck
	DataLossPct        float64
	Errors             []string

	finalized bool
}

// NewAnalysisLog creates a run log stamped with a time-derived run id.
func NewAnalysisLog(now time.Time) *AnalysisLog {
	return &AnalysisLog{
		RunID:              fmt.Sprintf("run_%s", now.UTC().Format("20060102_150405")),
		StartedAt:          now,
		BucketDistribution: make(map[string]int),
	}
}

// RecordStage appends a stage record. Timing is computed from start to now.
func (l *AnalysisLog) RecordStage(name string, start, end time.Time, itemsIn, itemsOut int, err error) {
	rec := StageRecord{
		Name:       name,
		StartedAt:  start,
		DurationMs: end.Sub(start).Milliseconds(),
		Success:    err == nil,
		ItemsIn:    itemsIn,
		ItemsOut:   itemsOut,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	l.Stages = append(l.Stages, rec)
}

// AddError appends a free-text error entry.
func (l *AnalysisLog) AddError(format string, args ...any) {
	l.Errors = append(l.Errors, fmt.Sprintf(format, args...))
}

// Finalize stamps the end time and computes the data-loss percentage. Calling
// it more than once is a no-op; a finalized log is never mutated again.
func (l *AnalysisLog) Finalize(now time.Time) {
	if l.finalized {
		return
	}
	l.finalized = true
	l.FinishedAt = now
	if l.RecordsReceived > 0 {
		lost := l.RecordsReceived - l.RowsAnalyzed
		if lost < 0 {
			lost = 0
		}
		l.DataLossPct = float64(lost) / float64(l.RecordsReceived) * 100
	}
}

// Finalized reports whether Finalize has run.
func (l *AnalysisLog) Finalized() bool {
	return l.finalized
}
