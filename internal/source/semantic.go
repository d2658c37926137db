// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/edusearch/internal/httputil"
	"github.com/pdiddy/edusearch/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

// semanticFields is the fixed field projection requested from the API.
const semanticFields = "paperId,title,authors,year,abstract,venue,citationCount,publicationDate,url"

// SemanticScholarBackend queries the Semantic Scholar REST API.
type SemanticScholarBackend struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	Policy    httputil.RetryPolicy
	Pacer     *Pacer

	// RelevanceKeywords overrides the default relevance vocabulary.
	RelevanceKeywords []string
}

// NewSemanticScholar builds the REST backend from config.
func NewSemanticScholar(cfg types.SearchConfig) *SemanticScholarBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultConfig().Search.Timeout
	}
	return &SemanticScholarBackend{
		Client:            &http.Client{Timeout: timeout},
		APIKey:            cfg.SemanticScholarAPIKey,
		UserAgent:         cfg.UserAgent,
		Policy:            httputil.DefaultPolicy(),
		Pacer:             NewPacer(cfg.RequestPacing),
		RelevanceKeywords: cfg.RelevanceKeywords,
	}
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Fetch queries the API under the shared retry contract and returns the
// relevance-filtered, normalized papers. Failures degrade to whatever was
// parsed plus warnings; nothing is raised past this boundary.
func (b *SemanticScholarBackend) Fetch(ctx context.Context, enhancedQuery string, limit int) ([]types.Paper, []types.Warning) {
	if limit <= 0 {
		limit = types.DefaultResultLimit
	}

	params := url.Values{
		"query":  {enhancedQuery},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	var papers []types.Paper
	var warnings []types.Warning

	err := b.Policy.Do(ctx, func() error {
		if err := b.Pacer.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", b.UserAgent)
		req.Header.Set("Accept", "application/json")
		if b.APIKey != "" {
			req.Header.Set("x-api-key", b.APIKey)
		}

		resp, err := b.Client.Do(req)
		if err != nil {
			return fmt.Errorf("semantic scholar request: %w", err)
		}
		defer resp.Body.Close()

		if err := httputil.CheckStatus(resp); err != nil {
			return fmt.Errorf("semantic scholar: %w", err)
		}

		papers, err = b.decodeResponse(resp.Body)
		return err
	})

	if err != nil {
		switch {
		case httputil.IsRateLimit(err):
			// Exactly one warning after the bounded backoff is exhausted.
			warnings = append(warnings, warn(b.Name(), types.WarnRateLimited,
				"rate limit persisted after retries; returning no results from this source"))
		case httputil.IsMalformed(err):
			// Keep the records decoded before the fault.
			warnings = append(warnings, warn(b.Name(), types.WarnMalformed, err.Error()))
		default:
			warnings = append(warnings, warn(b.Name(), types.WarnNetwork, err.Error()))
		}
	}
	return papers, warnings
}

// decodeResponse parses the response body. Individual result objects are
// decoded one at a time so a fault mid-stream keeps the records that
// already parsed; the fault itself aborts the fetch without retry.
func (b *SemanticScholarBackend) decodeResponse(r io.Reader) ([]types.Paper, error) {
	var sr semanticResponse
	if err := json.NewDecoder(r).Decode(&sr); err != nil {
		return nil, &httputil.MalformedResponseError{Reason: "parsing response body", Err: err}
	}

	var papers []types.Paper
	for i, raw := range sr.Data {
		var sp semanticPaper
		if err := json.Unmarshal(raw, &sp); err != nil {
			return papers, &httputil.MalformedResponseError{
				Reason: fmt.Sprintf("result %d", i+1),
				Err:    err,
			}
		}
		if !Relevant(sp.Title, sp.Abstract, b.RelevanceKeywords) {
			continue
		}
		papers = append(papers, b.mapPaper(sp))
	}
	return papers, nil
}

// mapPaper converts an API result into a Paper, resolving missing or null
// fields to sentinels at this boundary.
func (b *SemanticScholarBackend) mapPaper(sp semanticPaper) types.Paper {
	p := types.Paper{
		Title:           sp.Title,
		Year:            sp.Year,
		Abstract:        sp.Abstract,
		Venue:           sp.Venue,
		CitationCount:   sp.CitationCount,
		URL:             sp.URL,
		Source:          b.Name(),
		PublicationDate: sp.PublicationDate,
	}
	for _, a := range sp.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	return Normalize(p)
}

// Semantic Scholar API JSON structures. Data items stay raw so decoding
// faults can be located per result.
type semanticResponse struct {
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Data   []json.RawMessage `json:"data"`
}

type semanticPaper struct {
	PaperID         string           `json:"paperId"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	Venue           string           `json:"venue"`
	Year            int              `json:"year"`
	CitationCount   int              `json:"citationCount"`
	URL             string           `json:"url"`
	PublicationDate string           `json:"publicationDate"`
	Authors         []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
