// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/edusearch/internal/source"
	"github.com/pdiddy/edusearch/pkg/types"
)

// loadConfig layers config-file and environment overrides from viper over
// the built-in defaults, then resolves the API key from the secrets dir.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if d := viper.GetDuration("search.timeout"); d > 0 {
		cfg.Search.Timeout = d
	}
	if s := viper.GetString("search.user_agent"); s != "" {
		cfg.Search.UserAgent = s
	}
	if n := viper.GetInt("search.max_results"); n > 0 {
		cfg.Search.MaxResults = n
	}
	if viper.IsSet("search.enable_semantic_scholar") {
		cfg.Search.EnableSemanticScholar = viper.GetBool("search.enable_semantic_scholar")
	}
	if viper.IsSet("search.enable_scholar") {
		cfg.Search.EnableScholar = viper.GetBool("search.enable_scholar")
	}
	if d := viper.GetDuration("search.request_pacing"); d > 0 {
		cfg.Search.RequestPacing = d
	}
	if d := viper.GetDuration("search.scholar_item_delay"); d > 0 {
		cfg.Search.ScholarItemDelay = d
	}
	if ks := viper.GetStringSlice("search.enhance_keywords"); len(ks) > 0 {
		cfg.Search.EnhanceKeywords = ks
	}
	if ks := viper.GetStringSlice("search.relevance_keywords"); len(ks) > 0 {
		cfg.Search.RelevanceKeywords = ks
	}
	if s := viper.GetString("session.dir"); s != "" {
		cfg.Session.Dir = s
	}
	if s := viper.GetString("export.dir"); s != "" {
		cfg.Export.Dir = s
	}

	cfg.Search.SemanticScholarAPIKey = viper.GetString("search.semantic_scholar_api_key")
	if cfg.Search.SemanticScholarAPIKey == "" {
		cfg.Search.SemanticScholarAPIKey = loadedSecrets.SemanticScholarAPIKey()
	}

	return cfg
}

// buildBackends assembles the enabled source backends in priority order.
// The order decides which source's metadata wins a cross-source duplicate.
func buildBackends(cfg types.SearchConfig) []source.Backend {
	var backends []source.Backend
	if cfg.EnableSemanticScholar {
		backends = append(backends, source.NewSemanticScholar(cfg))
	}
	if cfg.EnableScholar {
		backends = append(backends, source.NewScholar(cfg))
	}
	return backends
}
