package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Rule tables (classifier
// patterns, case requirements, score weights) live here so the pipeline can
// be constructed with alternate rule sets in tests — there is no ambient
// global configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Segmenter  SegmenterConfig  `yaml:"segmenter" mapstructure:"segmenter"`
	Extractor  ExtractorConfig  `yaml:"extractor" mapstructure:"extractor"`
	Timeline   TimelineConfig   `yaml:"timeline" mapstructure:"timeline"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Cases      CasesConfig      `yaml:"cases" mapstructure:"cases"`
}

// AnthropicConfig holds Anthropic API settings for the extraction client.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP serve mode.
type ServerConfig struct {
	Port          int    `yaml:"port" mapstructure:"port"`
	UploadDir     string `yaml:"upload_dir" mapstructure:"upload_dir"`
	MaxUploadMB   int64  `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	AllowedOrigin string `yaml:"allowed_origin" mapstructure:"allowed_origin"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// IngestConfig configures PDF page ingestion.
type IngestConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MinPageChars  int    `yaml:"min_page_chars" mapstructure:"min_page_chars"`
}

// PatternRule is one weighted keyword/regex rule in the classifier table.
type PatternRule struct {
	Pattern string  `yaml:"pattern" mapstructure:"pattern"`
	Weight  float64 `yaml:"weight" mapstructure:"weight"`
}

// ClassifierConfig overrides the built-in page classification rule table.
// An empty Rules map means the defaults compiled into the classifier apply.
type ClassifierConfig struct {
	Rules map[string][]PatternRule `yaml:"rules" mapstructure:"rules"`
}

// SegmenterConfig tunes document boundary detection.
type SegmenterConfig struct {
	// ContinuationThreshold is the minimum top-candidate confidence for a
	// page to extend an open segment of the same dominant type.
	ContinuationThreshold float64 `yaml:"continuation_threshold" mapstructure:"continuation_threshold"`
	// TieEpsilon is the confidence band within which two candidate types are
	// considered tied.
	TieEpsilon float64 `yaml:"tie_epsilon" mapstructure:"tie_epsilon"`
	// MinTypeConfidence marks segments below it as low-confidence for
	// manual review. They are kept, never dropped.
	MinTypeConfidence float64 `yaml:"min_type_confidence" mapstructure:"min_type_confidence"`
}

// ExtractorConfig tunes the extraction stage.
type ExtractorConfig struct {
	MaxAttempts    int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrency int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RatePerMinute  float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	MaxChars       int     `yaml:"max_chars" mapstructure:"max_chars"`
}

// TimelineConfig tunes timeline gap detection.
type TimelineConfig struct {
	GapThresholdDays int `yaml:"gap_threshold_days" mapstructure:"gap_threshold_days"`
}

// ReportConfig holds the quality score weights. The score is
// confidence_weight * mean extraction confidence plus issue_weight * (1 -
// severity penalty), clamped to [0,1]. Weights are part of configuration so
// the score is stable and documented per deployment.
type ReportConfig struct {
	ConfidenceWeight float64 `yaml:"confidence_weight" mapstructure:"confidence_weight"`
	IssueWeight      float64 `yaml:"issue_weight" mapstructure:"issue_weight"`
}

// CasesConfig maps case types to the document types an audit of that case
// expects. Order inside each list is the order recommendations are emitted
// in. The "default" entry applies when the case type is unknown or empty.
type CasesConfig struct {
	Requirements map[string][]string `yaml:"requirements" mapstructure:"requirements"`
}

// RequiredTypes returns the requirement list for a case type, falling back
// to the default entry.
func (c CasesConfig) RequiredTypes(caseType string) []string {
	if req, ok := c.Requirements[strings.ToLower(caseType)]; ok {
		return req
	}
	return c.Requirements["default"]
}

// Load reads configuration from config.yaml and DOCAUDIT_* environment
// variables, applying defaults for everything not set.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOCAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env and defaults are enough to run.
		var notFound viper.ConfigFileNotFoundError
		if !eris.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "docaudit.db")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.allowed_origin", "*")

	v.SetDefault("ingest.pdftotext_path", "pdftotext")
	v.SetDefault("ingest.min_page_chars", 20)

	v.SetDefault("segmenter.continuation_threshold", 0.5)
	v.SetDefault("segmenter.tie_epsilon", 0.1)
	v.SetDefault("segmenter.min_type_confidence", 0.4)

	// The extraction provider throttles at roughly 20 calls per minute.
	v.SetDefault("extractor.max_attempts", 3)
	v.SetDefault("extractor.timeout_secs", 60)
	v.SetDefault("extractor.max_concurrency", 4)
	v.SetDefault("extractor.rate_per_minute", 20)
	v.SetDefault("extractor.max_chars", 4000)

	v.SetDefault("timeline.gap_threshold_days", 365)

	v.SetDefault("report.confidence_weight", 0.6)
	v.SetDefault("report.issue_weight", 0.4)

	v.SetDefault("cases.requirements", DefaultCaseRequirements())
}

// DefaultCaseRequirements returns the built-in case-type requirement tables.
func DefaultCaseRequirements() map[string][]string {
	return map[string][]string{
		"h1b":       {"LCA", "I797", "FOREIGN_PASSPORT", "VISA_STAMP", "I94"},
		"perm":      {"PWD", "PERM", "I797", "FOREIGN_PASSPORT"},
		"greencard": {"I797", "GREEN_CARD", "FOREIGN_PASSPORT", "I94"},
		"default":   {"I797", "FOREIGN_PASSPORT", "I94"},
	}
}

// InitLogger configures the global zap logger from LogConfig.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
