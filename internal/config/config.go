package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	LLMMaxRetries       int `yaml:"llm_max_retries"`
	LLMRetryBaseSeconds int `yaml:"llm_retry_base_seconds"`

	DetailSampleCap int `yaml:"detail_sample_cap"`
	ClusterCap      int `yaml:"cluster_cap"`
	DirectThreshold int `yaml:"direct_threshold"`

	TranscriptPath        string `yaml:"transcript_path"`
	BusinessGoalsPath     string `yaml:"business_goals_path"`
	CapabilitySummaryPath string `yaml:"capability_summary_path"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`
	TeamName        string `yaml:"team_name"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	AnalyzeSchedule string `yaml:"analyze_schedule"`
	TranscriptDir   string `yaml:"transcript_dir"`

	Timezone                   string `yaml:"timezone"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverrideInt(&cfg.LLMMaxRetries, "LLM_MAX_RETRIES")
	envOverrideInt(&cfg.LLMRetryBaseSeconds, "LLM_RETRY_BASE_SECONDS")
	envOverrideInt(&cfg.DetailSampleCap, "DETAIL_SAMPLE_CAP")
	envOverrideInt(&cfg.ClusterCap, "CLUSTER_CAP")
	envOverrideInt(&cfg.DirectThreshold, "DIRECT_THRESHOLD")
	envOverride(&cfg.TranscriptPath, "TRANSCRIPT_PATH")
	envOverride(&cfg.BusinessGoalsPath, "BUSINESS_GOALS_PATH")
	envOverride(&cfg.CapabilitySummaryPath, "CAPABILITY_SUMMARY_PATH")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.TeamName, "TEAM_NAME")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.AnalyzeSchedule, "ANALYZE_SCHEDULE")
	envOverride(&cfg.TranscriptDir, "TRANSCRIPT_DIR")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.LLMMaxRetries == 0 {
		cfg.LLMMaxRetries = 3
	}
	if cfg.LLMRetryBaseSeconds == 0 {
		cfg.LLMRetryBaseSeconds = 1
	}
	if cfg.DetailSampleCap == 0 {
		cfg.DetailSampleCap = 150
	}
	if cfg.ClusterCap == 0 {
		cfg.ClusterCap = 20
	}
	if cfg.DirectThreshold == 0 {
		cfg.DirectThreshold = 250
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./analyzer.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.TeamName == "" {
		cfg.TeamName = "Support Bot"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.TranscriptPath == "" && cfg.AnalyzeSchedule == "" {
		log.Fatalf("either transcript_path or analyze_schedule (with transcript_dir) must be set")
	}
	if cfg.AnalyzeSchedule != "" && cfg.TranscriptDir == "" {
		log.Fatalf("transcript_dir is required when analyze_schedule is set")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

// SlackConfigured reports whether run summaries should be posted to Slack.
func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		} else {
			log.Printf("Ignoring invalid %s=%q: %v", key, v, err)
		}
	}
}
