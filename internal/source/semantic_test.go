// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/edusearch/internal/httputil"
	"github.com/pdiddy/edusearch/pkg/types"
)

func testSemanticBackend(ts *httptest.Server) (*SemanticScholarBackend, *[]time.Duration) {
	var delays []time.Duration
	b := &SemanticScholarBackend{
		Client:    ts.Client(),
		UserAgent: "test/0.1",
		Policy: httputil.RetryPolicy{
			MaxAttempts:    httputil.DefaultMaxAttempts,
			RateLimitBase:  httputil.DefaultRateLimitBase,
			TransientDelay: httputil.DefaultTransientDelay,
			Sleep:          func(d time.Duration) { delays = append(delays, d) },
		},
		Pacer: NewPacer(time.Millisecond),
	}
	return b, &delays
}

func TestSemanticFetchRequestParams(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, _ := testSemanticBackend(ts)
	b.APIKey = "test-key-123"
	_, warnings := b.Fetch(context.Background(), "reading OR literacy", 15)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("query"); got != "reading OR literacy" {
		t.Errorf("query param = %q", got)
	}
	if got := q.Get("limit"); got != "15" {
		t.Errorf("limit param = %q, want 15", got)
	}
	for _, f := range []string{"paperId", "title", "authors", "year", "abstract", "venue", "citationCount", "publicationDate", "url"} {
		if !strings.Contains(q.Get("fields"), f) {
			t.Errorf("fields param %q missing %q", q.Get("fields"), f)
		}
	}
	if got := capturedReq.Header.Get("x-api-key"); got != "test-key-123" {
		t.Errorf("x-api-key header = %q", got)
	}
}

func TestSemanticFetchMapsSentinels(t *testing.T) {
	resp := `{"total":2,"offset":0,"data":[
		{"paperId":"a","title":"Adaptive Learning Platforms","authors":[{"authorId":"1","name":"Alice Smith"},{"authorId":"2","name":"Bob Jones"}],
		 "year":2021,"abstract":"A classroom study.","venue":"Computers & Education","citationCount":17,
		 "url":"https://example.org/a","publicationDate":"2021-03-04"},
		{"paperId":"b","title":null,"authors":[],"year":null,"abstract":"teaching with robots","venue":null,"citationCount":null,"url":null}
	]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, _ := testSemanticBackend(ts)
	papers, warnings := b.Fetch(context.Background(), "q", 20)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	got := papers[0]
	if got.Title != "Adaptive Learning Platforms" || got.Year != 2021 || got.CitationCount != 17 {
		t.Errorf("papers[0] = %+v", got)
	}
	if got.Source != "semantic_scholar" {
		t.Errorf("Source = %q", got.Source)
	}
	if got.AuthorString() != "Alice Smith, Bob Jones" {
		t.Errorf("AuthorString = %q", got.AuthorString())
	}

	sparse := papers[1]
	if sparse.Title != types.UnknownTitle {
		t.Errorf("sparse title = %q, want sentinel", sparse.Title)
	}
	if sparse.HasYear() {
		t.Errorf("sparse year = %d, want YearUnknown", sparse.Year)
	}
	if sparse.Venue != types.UnknownVenue {
		t.Errorf("sparse venue = %q, want sentinel", sparse.Venue)
	}
	if sparse.AuthorString() != types.UnknownAuthor {
		t.Errorf("sparse authors = %q, want sentinel", sparse.AuthorString())
	}
	if sparse.CitationCount != 0 {
		t.Errorf("sparse cites = %d, want 0", sparse.CitationCount)
	}
}

func TestSemanticFetchRelevanceGate(t *testing.T) {
	resp := `{"total":2,"offset":0,"data":[
		{"paperId":"a","title":"Gluon condensates in QCD","abstract":"Lattice results.","authors":[]},
		{"paperId":"b","title":"Peer instruction in physics","abstract":"A student cohort study.","authors":[]}
	]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, _ := testSemanticBackend(ts)
	papers, _ := b.Fetch(context.Background(), "q", 20)
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1 (off-topic record filtered)", len(papers))
	}
	if papers[0].Title != "Peer instruction in physics" {
		t.Errorf("kept %q", papers[0].Title)
	}
}

func TestSemanticFetchRateLimitExhaustion(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, delays := testSemanticBackend(ts)
	papers, warnings := b.Fetch(context.Background(), "q", 20)

	if len(papers) != 0 {
		t.Errorf("len(papers) = %d, want 0", len(papers))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if len(warnings) != 1 || warnings[0].Kind != types.WarnRateLimited {
		t.Fatalf("warnings = %v, want exactly one rate-limit warning", warnings)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*delays) != 2 || (*delays)[0] != want[0] || (*delays)[1] != want[1] {
		t.Errorf("backoff delays = %v, want %v", *delays, want)
	}
}

func TestSemanticFetchTransientThenSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":1,"offset":0,"data":[{"paperId":"a","title":"Learning analytics","authors":[]}]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, delays := testSemanticBackend(ts)
	papers, warnings := b.Fetch(context.Background(), "q", 20)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none after recovery", warnings)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
	want := []time.Duration{2 * time.Second, 2 * time.Second}
	if len(*delays) != 2 || (*delays)[0] != want[0] || (*delays)[1] != want[1] {
		t.Errorf("transient delays = %v, want %v", *delays, want)
	}
}

func TestSemanticFetchMalformedKeepsPartialYield(t *testing.T) {
	var calls int32
	resp := `{"total":2,"offset":0,"data":[
		{"paperId":"a","title":"Curriculum design patterns","authors":[]},
		{"paperId":"b","title":12345,"authors":[]}
	]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, _ := testSemanticBackend(ts)
	papers, warnings := b.Fetch(context.Background(), "q", 20)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("attempts = %d, want 1 (malformed is not retried)", got)
	}
	if len(papers) != 1 || papers[0].Title != "Curriculum design patterns" {
		t.Fatalf("papers = %+v, want the record parsed before the fault", papers)
	}
	if len(warnings) != 1 || warnings[0].Kind != types.WarnMalformed {
		t.Fatalf("warnings = %v, want one malformed warning", warnings)
	}
}

func TestSemanticFetchWholeBodyMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{invalid json`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, _ := testSemanticBackend(ts)
	papers, warnings := b.Fetch(context.Background(), "q", 20)
	if len(papers) != 0 {
		t.Errorf("len(papers) = %d, want 0", len(papers))
	}
	if len(warnings) != 1 || warnings[0].Kind != types.WarnMalformed {
		t.Fatalf("warnings = %v, want one malformed warning", warnings)
	}
}

func TestSemanticFetchDefaultLimit(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b, _ := testSemanticBackend(ts)
	b.Fetch(context.Background(), "q", 0)
	if got := capturedReq.URL.Query().Get("limit"); got != "20" {
		t.Errorf("limit param = %q, want 20 (default)", got)
	}
}

func TestSemanticBackendName(t *testing.T) {
	b := &SemanticScholarBackend{}
	if got := b.Name(); got != "semantic_scholar" {
		t.Errorf("Name() = %q", got)
	}
}
