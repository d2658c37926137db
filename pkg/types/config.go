// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request network timeout (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the per-source result limit, clamped to [5, 100]
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableSemanticScholar controls whether the Semantic Scholar backend
	// is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnableScholar controls whether the scrape-backed Scholar backend is
	// used. Off by default: scraping is best-effort and slow.
	EnableScholar bool `json:"enable_scholar" yaml:"enable_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// RequestPacing is the minimum delay imposed before every outbound
	// call to stay under informal rate limits (default 1s).
	RequestPacing time.Duration `json:"request_pacing" yaml:"request_pacing"`

	// ScholarItemDelay is the extra pacing delay after each individually
	// processed result from a scrape backend (default 2s). Scrape targets
	// rate-limit per item, not per request.
	ScholarItemDelay time.Duration `json:"scholar_item_delay" yaml:"scholar_item_delay"`

	// EnhanceKeywords is the domain vocabulary appended to every remote
	// query as a disjunction to bias remote ranking. Empty means the
	// education defaults.
	EnhanceKeywords []string `json:"enhance_keywords,omitempty" yaml:"enhance_keywords,omitempty"`

	// RelevanceKeywords is the vocabulary used by the local relevance
	// gate: a record survives if any keyword appears in its title or
	// abstract. Empty means the education defaults.
	RelevanceKeywords []string `json:"relevance_keywords,omitempty" yaml:"relevance_keywords,omitempty"`
}

// Result-limit bounds for a single search.
const (
	MinResultLimit     = 5
	MaxResultLimit     = 100
	DefaultResultLimit = 20
)

// DefaultEnhanceKeywords is the 5-term query-enhancement vocabulary.
func DefaultEnhanceKeywords() []string {
	return []string{"education", "learning", "teaching", "pedagogy", "educational"}
}

// DefaultRelevanceKeywords is the 9-term relevance-gate vocabulary. It is
// deliberately broad: the enhanced query already biases the remote ranking,
// so the local gate only rejects obviously off-topic leakage.
func DefaultRelevanceKeywords() []string {
	return []string{
		"education", "learning", "teaching", "student", "school",
		"classroom", "pedagogy", "curriculum", "instruction",
	}
}

// SessionConfig holds settings for the saved-set session store.
type SessionConfig struct {
	// Dir is the workspace directory holding the saved-set database
	// (default "session").
	Dir string `json:"dir" yaml:"dir"`
}

// ExportConfig holds settings for export documents.
type ExportConfig struct {
	// Dir is the directory export files are written to (default "exports").
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups all stage configurations.
type Config struct {
	Search  SearchConfig  `json:"search" yaml:"search"`
	Session SessionConfig `json:"session" yaml:"session"`
	Export  ExportConfig  `json:"export" yaml:"export"`
}

// DefaultConfig returns the configuration used when no config file overrides
// a setting.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "edusearch/0.1 (academic literature search)",
			},
			MaxResults:            DefaultResultLimit,
			EnableSemanticScholar: true,
			EnableScholar:         false,
			RequestPacing:         1 * time.Second,
			ScholarItemDelay:      2 * time.Second,
		},
		Session: SessionConfig{Dir: "session"},
		Export:  ExportConfig{Dir: "exports"},
	}
}
