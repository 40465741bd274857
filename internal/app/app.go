package app

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ritharam/bot-performance-analyzer/internal/analysis"
	"github.com/ritharam/bot-performance-analyzer/internal/config"
	"github.com/ritharam/bot-performance-analyzer/internal/httpx"
	"github.com/ritharam/bot-performance-analyzer/internal/ingest"
	slacknotify "github.com/ritharam/bot-performance-analyzer/internal/integrations/slack"
	"github.com/ritharam/bot-performance-analyzer/internal/integrations/llm"
	"github.com/ritharam/bot-performance-analyzer/internal/report"
	"github.com/ritharam/bot-performance-analyzer/internal/schedule"
	"github.com/ritharam/bot-performance-analyzer/internal/storage/sqlite"
)

const maxContextFileChars = 8000

func Main() {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Team=%s Provider=%s DetailSampleCap=%d ClusterCap=%d DirectThreshold=%d MaxRetries=%d ExternalHTTPTimeout=%s",
		cfg.TeamName, cfg.LLMProvider, cfg.DetailSampleCap, cfg.ClusterCap, cfg.DirectThreshold, cfg.LLMMaxRetries, appliedHTTPTimeout,
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	os.MkdirAll(cfg.ReportOutputDir, 0755)
	log.Printf("Report output dir: %s", cfg.ReportOutputDir)

	var caller llm.Caller
	switch cfg.LLMProvider {
	case "openai":
		caller = llm.NewOpenAICaller(cfg.OpenAIAPIKey, cfg.LLMModel, httpx.ExternalHTTPClient())
	default:
		caller = llm.NewAnthropicCaller(cfg.AnthropicAPIKey, cfg.LLMModel)
	}
	gateway := llm.NewGateway(caller).
		WithRetryPolicy(cfg.LLMMaxRetries, time.Duration(cfg.LLMRetryBaseSeconds)*time.Second)

	pipeline := analysis.NewPipeline(gateway, sqlite.NewStore(db))
	pipeline.DetailSampleCap = cfg.DetailSampleCap
	pipeline.ClusterCap = cfg.ClusterCap
	pipeline.DirectThreshold = cfg.DirectThreshold

	var notifier *slacknotify.Notifier
	if cfg.SlackConfigured() {
		notifier = slacknotify.NewNotifier(cfg.SlackBotToken, cfg.SlackChannelID)
	}

	businessGoals := loadContextFile(cfg.BusinessGoalsPath, "business goals")
	capabilitySummary := loadContextFile(cfg.CapabilitySummaryPath, "capability summary")

	runOnce := func(transcriptPath string) {
		analyzeFile(cfg, pipeline, gateway, notifier, transcriptPath, businessGoals, capabilitySummary)
	}

	if cfg.TranscriptPath != "" {
		runOnce(cfg.TranscriptPath)
	}

	if cfg.AnalyzeSchedule != "" {
		schedule.StartAnalysisScheduler(cfg.AnalyzeSchedule, cfg.TranscriptDir, cfg.Location, runOnce)
		log.Println("Bot Performance Analyzer running in scheduled mode...")
		select {}
	}
}

func analyzeFile(cfg config.Config, pipeline *analysis.Pipeline, gateway *llm.Gateway, notifier *slacknotify.Notifier, transcriptPath, businessGoals, capabilitySummary string) {
	rows, stats, err := ingest.ReadTranscriptFile(transcriptPath)
	if err != nil {
		log.Printf("Ingest failed file=%s: %v", transcriptPath, err)
		return
	}
	log.Printf("Ingested file=%s records=%d skipped=%d rows=%d", transcriptPath, stats.RecordsRead, stats.Skipped, len(rows))
	if len(rows) == 0 {
		log.Printf("No analyzable rows in %s", transcriptPath)
		return
	}

	result, err := pipeline.Run(context.Background(), analysis.Input{
		Rows:              rows,
		RecordsReceived:   stats.RecordsRead,
		RecordsSkipped:    stats.Skipped,
		BusinessGoals:     businessGoals,
		CapabilitySummary: capabilitySummary,
	})
	if err != nil {
		log.Printf("Analysis aborted: %v", err)
		return
	}

	usage := gateway.Usage()
	log.Printf("Analysis run=%s complete rows=%d clusters=%d tokens=%d",
		result.Log.RunID, result.TotalRows, len(result.Clusters), usage.TotalTokens())

	backlogPath, err := report.WriteBacklogReport(result, cfg.ReportOutputDir, cfg.TeamName, result.Log.FinishedAt)
	if err != nil {
		log.Printf("Backlog report write failed: %v", err)
	} else {
		log.Printf("Backlog report written to %s", backlogPath)
	}

	auditPath, err := report.WriteAuditReport(result.Log, cfg.ReportOutputDir)
	if err != nil {
		log.Printf("Audit report write failed: %v", err)
	} else {
		log.Printf("Audit report written to %s", auditPath)
	}

	if notifier != nil {
		if err := notifier.PostRunSummary(result); err == nil && auditPath != "" {
			_ = notifier.UploadAuditReport(result.Log.RunID, auditPath)
		}
	}
}

func loadContextFile(path, name string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Optional file: no hard failure if missing.
		log.Printf("%s skipped path=%s err=%v", name, path, err)
		return ""
	}
	text := strings.TrimSpace(string(data))
	if len(text) > maxContextFileChars {
		text = text[:maxContextFileChars] + "\n...(truncated)"
	}
	return text
}
