package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ritharam/bot-performance-analyzer/internal/domain"
)

// DefaultDirectThreshold is the row count at or below which the staged
// cluster pass is skipped and only the detail stage runs.
const DefaultDirectThreshold = 250

// LLMCaller sends a prompt pair to the configured provider and returns the
// raw response text. Retry behavior lives behind this interface; an error
// surfacing here is either recoverable (retries exhausted on a transient
// failure) or fatal to the run.
type LLMCaller interface {
	Send(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RecoverableError marks stage errors the pipeline absorbs by degrading the
// stage to its empty default instead of aborting the run.
type RecoverableError interface {
	error
	Recoverable() bool
}

func isRecoverable(err error) bool {
	var r RecoverableError
	return errors.As(err, &r) && r.Recoverable()
}

// LogSink receives the finalized run log. Append is the only mutation.
type LogSink interface {
	Append(runLog *domain.AnalysisLog) error
}

// Input carries one run's typed rows plus ingestion counts for the run log.
// RecordsReceived may be zero when the caller did no pre-filtering.
type Input struct {
	Rows              []domain.ConversationRow
	RecordsReceived   int
	RecordsSkipped    int
	BusinessGoals     string
	CapabilitySummary string
}

// Pipeline is the classification-and-reconciliation pipeline. One Run call
// owns its row collection and run log end to end; pipelines are safe to reuse
// across runs because all per-run state lives in Run.
type Pipeline struct {
	Caller          LLMCaller
	Sink            LogSink
	DetailSampleCap int
	ClusterCap      int
	DirectThreshold int
}

// NewPipeline returns a pipeline with the default caps filled in.
func NewPipeline(caller LLMCaller, sink LogSink) *Pipeline {
	return &Pipeline{
		Caller:          caller,
		Sink:            sink,
		DetailSampleCap: DefaultDetailSampleCap,
		ClusterCap:      StrategicClusterCap,
		DirectThreshold: DefaultDirectThreshold,
	}
}

// Run executes the full pipeline over in.Rows, mutating them in place and
// returning them inside the result. The result is best-effort: stage-local
// failures degrade and are logged; only a fatal provider error aborts, and
// even then the finalized run log captures everything computed before the
// abort.
func (p *Pipeline) Run(ctx context.Context, in Input) (*domain.AnalysisResult, error) {
	runLog := domain.NewAnalysisLog(time.Now())
	runLog.RecordsReceived = in.RecordsReceived
	if runLog.RecordsReceived == 0 {
		runLog.RecordsReceived = len(in.Rows)
	}
	runLog.RecordsSkipped = in.RecordsSkipped
	runLog.RowsAnalyzed = len(in.Rows)

	rows := in.Rows

	start := time.Now()
	clusters := BuildClusterSummaries(rows)
	runLog.RecordStage("cluster_summaries", start, time.Now(), len(rows), len(clusters), nil)
	runLog.ClusterCount = len(clusters)
	if len(clusters) > 0 {
		runLog.TopFailureRate = clusters[0].FailureRate
	}

	start = time.Now()
	sampled := SampleFailureRows(rows, p.detailCap())
	runLog.RecordStage("failure_sampling", start, time.Now(), len(rows), len(sampled), nil)
	runLog.SampledFailures = len(sampled)

	staged := len(rows) > p.directThreshold()
	if !staged {
		log.Printf("pipeline mode=direct rows=%d threshold=%d (strategic stage skipped)", len(rows), p.directThreshold())
	}

	strategic := EmptyStrategicResult()
	if staged {
		system, user := BuildStrategicPrompts(clusters, in.BusinessGoals, in.CapabilitySummary, p.clusterCap())
		start = time.Now()
		text, err := p.Caller.Send(ctx, system, user)
		if err != nil {
			runLog.RecordStage("llm_strategic", start, time.Now(), min(len(clusters), p.clusterCap()), 0, err)
			if !isRecoverable(err) {
				runLog.AddError("strategic stage fatal: %v", err)
				p.finish(runLog)
				return nil, fmt.Errorf("strategic stage: %w", err)
			}
			runLog.AddError("strategic stage degraded to empty: %v", err)
		} else {
			strategic = ParseStrategicResponse(text)
			runLog.RecordStage("llm_strategic", start, time.Now(), min(len(clusters), p.clusterCap()), len(strategic.Assignments), nil)
		}
	}

	detail := EmptyDetailResult()
	if len(sampled) > 0 {
		system, user := BuildDetailPrompts(sampled, in.BusinessGoals)
		start = time.Now()
		text, err := p.Caller.Send(ctx, system, user)
		if err != nil {
			runLog.RecordStage("llm_detail", start, time.Now(), len(sampled), 0, err)
			if !isRecoverable(err) {
				runLog.AddError("detail stage fatal: %v", err)
				p.finish(runLog)
				return nil, fmt.Errorf("detail stage: %w", err)
			}
			runLog.AddError("detail stage degraded to empty: %v", err)
		} else {
			detail = ParseDetailResponse(text)
			count := 0
			for _, recs := range detail.Recommendations {
				count += len(recs)
			}
			runLog.RecordStage("llm_detail", start, time.Now(), len(sampled), count, nil)
		}
	}

	if err := ctx.Err(); err != nil {
		runLog.AddError("run cancelled: %v", err)
		p.finish(runLog)
		return nil, err
	}

	// Strategic entries before detail entries, per bucket: the merge
	// tie-break and the override ordering both rely on it.
	combined := emptyBucketLists()
	for _, bucket := range domain.ActionBuckets {
		combined[bucket] = append(combined[bucket], strategic.Recommendations[bucket]...)
		combined[bucket] = append(combined[bucket], detail.Recommendations[bucket]...)
	}

	start = time.Now()
	outcome := AssignBuckets(rows, strategic.Assignments, combined)
	runLog.RecordStage("bucket_assignment", start, time.Now(), len(rows), outcome.MappedRows+outcome.OverriddenRows, nil)
	runLog.MappedTopics = len(strategic.Assignments)
	runLog.UnmappedTopics = outcome.UnmappedTopics
	runLog.OverriddenRows = outcome.OverriddenRows
	runLog.DroppedIndices = outcome.DroppedIndices

	merged := MergeRecommendations(combined)
	ResolveIssueCategories(rows, strategic.Assignments, merged)

	result := &domain.AnalysisResult{
		Rows:            rows,
		Recommendations: merged,
		Clusters:        clusters,
		TotalRows:       len(rows),
		Log:             runLog,
	}

	runLog.Validations = Validate(rows, clusters, strategic.Assignments, merged)
	runLog.BucketDistribution = result.BucketDistribution()
	p.finish(runLog)
	return result, nil
}

func (p *Pipeline) finish(runLog *domain.AnalysisLog) {
	runLog.Finalize(time.Now())
	if p.Sink == nil {
		return
	}
	if err := p.Sink.Append(runLog); err != nil {
		log.Printf("pipeline run=%s history append failed: %v", runLog.RunID, err)
	}
}

func (p *Pipeline) detailCap() int {
	if p.DetailSampleCap > 0 {
		return p.DetailSampleCap
	}
	return DefaultDetailSampleCap
}

func (p *Pipeline) clusterCap() int {
	if p.ClusterCap > 0 {
		return p.ClusterCap
	}
	return StrategicClusterCap
}

func (p *Pipeline) directThreshold() int {
	if p.DirectThreshold > 0 {
		return p.DirectThreshold
	}
	return DefaultDirectThreshold
}
