// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/edusearch/internal/httputil"
	"github.com/pdiddy/edusearch/pkg/types"
)

// scholarBaseURL is the results-page endpoint of the scrape-backed source.
// Declared as a var so tests can substitute an httptest server.
var scholarBaseURL = "https://scholar.google.com/scholar"

// maxItemParseErrors bounds how many unparseable result rows are skipped
// before the remainder of the page is abandoned.
const maxItemParseErrors = 3

// blockedError signals that the remote's anti-automation heuristics cut us
// off. Not retried: the backend stops early and keeps what it gathered.
type blockedError struct {
	reason string
}

func (e *blockedError) Error() string { return "source blocked: " + e.reason }

func isBlocked(err error) bool {
	var b *blockedError
	return errors.As(err, &b)
}

// yearRe matches a plausible publication year inside a byline.
var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// citedByRe extracts the citation count from a "Cited by N" footer link.
var citedByRe = regexp.MustCompile(`Cited by (\d+)`)

// ScholarBackend scrapes a Scholar-style results page. The remote charges
// per item, not per request, so an extra pacing delay follows each
// individually processed record.
type ScholarBackend struct {
	Client    *http.Client
	UserAgent string
	Policy    httputil.RetryPolicy
	Pacer     *Pacer

	// ItemDelay is slept after each processed result row.
	ItemDelay time.Duration

	// SleepItem performs the per-item delay; injectable for tests.
	// When nil, time.Sleep is used.
	SleepItem func(time.Duration)

	RelevanceKeywords []string
}

// NewScholar builds the scrape backend from config.
func NewScholar(cfg types.SearchConfig) *ScholarBackend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultConfig().Search.Timeout
	}
	itemDelay := cfg.ScholarItemDelay
	if itemDelay <= 0 {
		itemDelay = 2 * time.Second
	}
	policy := httputil.DefaultPolicy()
	policy.Retryable = func(err error) bool { return !isBlocked(err) }
	return &ScholarBackend{
		Client:            &http.Client{Timeout: timeout},
		UserAgent:         cfg.UserAgent,
		Policy:            policy,
		Pacer:             NewPacer(cfg.RequestPacing),
		ItemDelay:         itemDelay,
		RelevanceKeywords: cfg.RelevanceKeywords,
	}
}

// Name returns the backend identifier.
func (b *ScholarBackend) Name() string { return "scholar" }

// Fetch scrapes one results page under the shared retry contract. Blocked
// detection stops early with whatever was gathered; unparseable rows are
// skipped up to a bounded count.
func (b *ScholarBackend) Fetch(ctx context.Context, enhancedQuery string, limit int) ([]types.Paper, []types.Warning) {
	if limit <= 0 {
		limit = types.DefaultResultLimit
	}

	params := url.Values{
		"q":   {enhancedQuery},
		"hl":  {"en"},
		"num": {strconv.Itoa(limit)},
	}
	reqURL := scholarBaseURL + "?" + params.Encode()

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
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := b.Client.Do(req)
		if err != nil {
			return fmt.Errorf("scholar request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusForbidden {
			return &blockedError{reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
		}
		if err := httputil.CheckStatus(resp); err != nil {
			return fmt.Errorf("scholar: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return &httputil.MalformedResponseError{Reason: "parsing results page", Err: err}
		}
		if doc.Find("#gs_captcha_ccl, form#captcha-form").Length() > 0 {
			return &blockedError{reason: "captcha challenge page"}
		}

		papers, warnings = b.parseRows(doc, limit)
		return nil
	})

	if err != nil {
		switch {
		case isBlocked(err):
			warnings = append(warnings, warn(b.Name(), types.WarnSourceBlocked, err.Error()))
		case httputil.IsRateLimit(err):
			warnings = append(warnings, warn(b.Name(), types.WarnRateLimited,
				"rate limit persisted after retries; returning no results from this source"))
		case httputil.IsMalformed(err):
			warnings = append(warnings, warn(b.Name(), types.WarnMalformed, err.Error()))
		default:
			warnings = append(warnings, warn(b.Name(), types.WarnNetwork, err.Error()))
		}
	}
	return papers, warnings
}

// parseRows walks the result rows, skipping unparseable ones until the
// bounded error counter trips, and pacing after every processed item.
func (b *ScholarBackend) parseRows(doc *goquery.Document, limit int) ([]types.Paper, []types.Warning) {
	var papers []types.Paper
	var warnings []types.Warning
	parseErrors := 0

	doc.Find("div.gs_ri").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if len(papers) >= limit {
			return false
		}

		p, err := b.parseRow(row)
		b.sleepItem()
		if err != nil {
			parseErrors++
			warnings = append(warnings, warn(b.Name(), types.WarnItemParse,
				fmt.Sprintf("result %d: %v", i+1, err)))
			if parseErrors >= maxItemParseErrors {
				warnings = append(warnings, warn(b.Name(), types.WarnSourceBlocked,
					fmt.Sprintf("abandoning remaining results after %d parse errors", parseErrors)))
				return false
			}
			return true
		}

		if !Relevant(p.Title, p.Abstract, b.RelevanceKeywords) {
			return true
		}
		papers = append(papers, Normalize(p))
		return true
	})

	return papers, warnings
}

// parseRow extracts one record from a result row.
func (b *ScholarBackend) parseRow(row *goquery.Selection) (types.Paper, error) {
	title := row.Find("h3.gs_rt a").First()
	if title.Length() == 0 {
		return types.Paper{}, fmt.Errorf("no title link")
	}

	p := types.Paper{
		Title:  collapseSpace(title.Text()),
		Source: b.Name(),
	}
	if href, ok := title.Attr("href"); ok {
		p.URL = href
	}

	p.Authors, p.Venue, p.Year = parseByline(row.Find("div.gs_a").Text())
	p.Abstract = collapseSpace(row.Find("div.gs_rs").Text())

	row.Find("div.gs_fl a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		m := citedByRe.FindStringSubmatch(a.Text())
		if m == nil {
			return true
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			p.CitationCount = n
		}
		return false
	})

	return p, nil
}

// parseByline splits the "Authors - Venue, Year - host" footer line. Any
// part that fails to parse resolves to its sentinel, never to an error:
// a sparse byline must not void the row.
func parseByline(byline string) (authors []string, venue string, year int) {
	year = types.YearUnknown
	parts := strings.Split(byline, " - ")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return nil, "", year
	}

	for _, a := range strings.Split(parts[0], ",") {
		a = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(a), "…"))
		if a != "" {
			authors = append(authors, a)
		}
	}

	if len(parts) > 1 {
		vy := parts[1]
		if m := yearRe.FindString(vy); m != "" {
			if y, err := strconv.Atoi(m); err == nil {
				year = y
			}
		}
		venue = strings.Trim(collapseSpace(yearRe.ReplaceAllString(vy, "")), " ,")
	}
	return authors, venue, year
}

func (b *ScholarBackend) sleepItem() {
	if b.ItemDelay <= 0 {
		return
	}
	if b.SleepItem != nil {
		b.SleepItem(b.ItemDelay)
		return
	}
	time.Sleep(b.ItemDelay)
}
