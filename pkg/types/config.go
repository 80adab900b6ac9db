// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "brief-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the source-finding stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey authenticates against the search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxSources caps the number of candidates returned (default 10).
	MaxSources int `json:"max_sources" yaml:"max_sources" mapstructure:"max_sources"`

	// MinSources is the hard floor below which the stage fails (default 2).
	MinSources int `json:"min_sources" yaml:"min_sources" mapstructure:"min_sources"`

	// ResultsPerQuery is the result count requested per search call (default 10).
	ResultsPerQuery int `json:"results_per_query" yaml:"results_per_query" mapstructure:"results_per_query"`

	// InterQueryDelay is the pause between consecutive search calls (default 1s).
	InterQueryDelay time.Duration `json:"inter_query_delay" yaml:"inter_query_delay" mapstructure:"inter_query_delay"`
}

// ExtractionBackend identifies the content extraction provider.
type ExtractionBackend string

const (
	BackendJina  ExtractionBackend = "jina"
	BackendLocal ExtractionBackend = "local"
)

// ExtractionConfig holds settings for the content extraction stage.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the extraction provider: jina or local.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// APIKey authenticates against the extraction provider (jina only).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// TargetSuccesses stops the stage early once this many extractions
	// succeed (default 5).
	TargetSuccesses int `json:"target_successes" yaml:"target_successes" mapstructure:"target_successes"`

	// MinSuccesses is the hard floor below which the stage fails (default 2).
	MinSuccesses int `json:"min_successes" yaml:"min_successes" mapstructure:"min_successes"`

	// MinWordCount rejects extractions shorter than this many words (default 500).
	MinWordCount int `json:"min_word_count" yaml:"min_word_count" mapstructure:"min_word_count"`

	// InterCallDelay is the base pause between extraction calls (default 1s);
	// the extractor applies jitter on top so consecutive calls land 1-2s apart.
	InterCallDelay time.Duration `json:"inter_call_delay" yaml:"inter_call_delay" mapstructure:"inter_call_delay"`
}

// AIConfig holds shared settings for stages that call the generative model API.
type AIConfig struct {
	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the generative API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AnalysisConfig holds settings for the per-source analysis stage.
type AnalysisConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// MaxContentChars bounds the content prefix sent to the model (default 12000).
	MaxContentChars int `json:"max_content_chars" yaml:"max_content_chars" mapstructure:"max_content_chars"`

	// InterCallDelay is the pause between consecutive analysis calls (default 500ms).
	InterCallDelay time.Duration `json:"inter_call_delay" yaml:"inter_call_delay" mapstructure:"inter_call_delay"`
}

// SynthesisConfig holds settings for the brief synthesis stage.
type SynthesisConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// MaxAttempts bounds the generate/validate loop (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// RetryBackoff is the wait before the single orchestrator-level retry
	// of the whole synthesis call (default 2s).
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// StoreConfig holds settings for brief persistence and artifacts.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "briefs.db").
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// ArtifactDir is where rendered brief artifacts are written (default "artifacts").
	ArtifactDir string `json:"artifact_dir" yaml:"artifact_dir" mapstructure:"artifact_dir"`
}

// PipelineConfig groups all stage configurations for one pipeline run.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Synthesis  SynthesisConfig  `json:"synthesis" yaml:"synthesis" mapstructure:"synthesis"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
}
