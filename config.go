package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ModelName identifies the cohort in result records and reports.
	ModelName string `yaml:"model_name"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	NLIEndpoint string `yaml:"nli_endpoint"`
	NLIAPIKey   string `yaml:"nli_api_key"`

	WikipediaURL        string `yaml:"wikipedia_url"`
	WikiResultsPerQuery int    `yaml:"wiki_results_per_query"`
	WikiSentences       int    `yaml:"wiki_sentences"`

	EvidenceK int     `yaml:"evidence_k"`
	Tau       float64 `yaml:"tau"`

	BenchmarkPath string `yaml:"benchmark_path"`
	ResultsDir    string `yaml:"results_dir"`
	DBPath        string `yaml:"db_path"`

	Concurrency        int `yaml:"concurrency"`
	ItemTimeoutSeconds int `yaml:"item_timeout_seconds"`

	MitigationEnabled    bool `yaml:"mitigation_enabled"`
	MitigationCandidates int  `yaml:"mitigation_candidates"`

	RunSchedule    string `yaml:"run_schedule"`
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	// Derived.
	ItemTimeout time.Duration `yaml:"-"`
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
	envOverride(&cfg.ModelName, "MODEL_NAME")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.NLIEndpoint, "NLI_ENDPOINT")
	envOverride(&cfg.NLIAPIKey, "NLI_API_KEY")
	envOverride(&cfg.WikipediaURL, "WIKIPEDIA_URL")
	envOverrideInt(&cfg.WikiResultsPerQuery, "WIKI_RESULTS_PER_QUERY")
	envOverrideInt(&cfg.WikiSentences, "WIKI_SENTENCES")
	envOverrideInt(&cfg.EvidenceK, "EVIDENCE_K")
	envOverrideFloat(&cfg.Tau, "TAU")
	envOverride(&cfg.BenchmarkPath, "BENCHMARK_PATH")
	envOverride(&cfg.ResultsDir, "RESULTS_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.Concurrency, "CONCURRENCY")
	envOverrideInt(&cfg.ItemTimeoutSeconds, "ITEM_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.MitigationCandidates, "MITIGATION_CANDIDATES")
	envOverride(&cfg.RunSchedule, "RUN_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	if val := os.Getenv("MITIGATION_ENABLED"); val != "" {
		cfg.MitigationEnabled = val == "1" || val == "true"
	}

	applyDefaults(&cfg)

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ModelName == "" {
		cfg.ModelName = "baseline"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.WikipediaURL == "" {
		cfg.WikipediaURL = "https://en.wikipedia.org"
	}
	if cfg.WikiResultsPerQuery == 0 {
		cfg.WikiResultsPerQuery = 2
	}
	if cfg.WikiSentences == 0 {
		cfg.WikiSentences = 3
	}
	if cfg.EvidenceK == 0 {
		cfg.EvidenceK = 3
	}
	if cfg.Tau == 0 {
		cfg.Tau = 0.60
	}
	if cfg.BenchmarkPath == "" {
		cfg.BenchmarkPath = "bench/questions.jsonl"
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "./runs"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./truthlayer.db"
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.ItemTimeoutSeconds == 0 {
		cfg.ItemTimeoutSeconds = 120
	}
	if cfg.MitigationCandidates == 0 {
		cfg.MitigationCandidates = 3
	}
	cfg.ItemTimeout = time.Duration(cfg.ItemTimeoutSeconds) * time.Second
}

func validateConfig(cfg Config) error {
	switch cfg.LLMProvider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}
	if cfg.Tau < 0 || cfg.Tau > 1 {
		return fmt.Errorf("invalid tau '%f': must be between 0 and 1", cfg.Tau)
	}
	if cfg.EvidenceK < 1 {
		return fmt.Errorf("invalid evidence_k '%d': must be >= 1", cfg.EvidenceK)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency '%d': must be >= 1", cfg.Concurrency)
	}
	if cfg.MitigationCandidates < 1 {
		return fmt.Errorf("invalid mitigation_candidates '%d': must be >= 1", cfg.MitigationCandidates)
	}
	return nil
}

// validateForRun checks the credentials an evaluation pass needs. Analyze
// mode never touches external services, so this is not part of LoadConfig.
func validateForRun(cfg Config) error {
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required when llm_provider=openai")
		}
	}
	if cfg.NLIEndpoint == "" {
		return fmt.Errorf("nli_endpoint is required to score entailment")
	}
	return nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("Invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
