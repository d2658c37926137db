// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fans a parsed query out to the configured source backends
// and merges the yields into one deduplicated, ranked result set.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pdiddy/edusearch/internal/query"
	"github.com/pdiddy/edusearch/internal/source"
	"github.com/pdiddy/edusearch/pkg/types"
)

// Options narrows one search run. A zero FromYear/ToYear leaves that bound
// open; when both are zero no year view is applied.
type Options struct {
	Limit    int
	FromYear int
	ToYear   int
}

// Output holds the merged results of one run. Papers is the presented view
// (year-filtered when bounds were given); All keeps the full ranked list so
// callers can still show records with an unresolved year.
type Output struct {
	Papers      []types.Paper
	All         []types.Paper
	DupsRemoved int
	Warnings    []types.Warning
}

// ClampLimit bounds a requested result count to the supported window,
// substituting the default for an unset value.
func ClampLimit(n int) int {
	switch {
	case n == 0:
		return types.DefaultResultLimit
	case n < types.MinResultLimit:
		return types.MinResultLimit
	case n > types.MaxResultLimit:
		return types.MaxResultLimit
	}
	return n
}

// Run executes one search: enhance the query, fetch from every backend
// concurrently, then merge, dedup, rank and filter. Backend failures never
// fail the run; they surface as warnings on the Output. The merge order is
// the backends' registration order regardless of which finishes first, so
// the duplicate tie-break stays deterministic.
func Run(ctx context.Context, parsed query.Parsed, backends []source.Backend, cfg types.SearchConfig, opts Options) (Output, error) {
	if parsed.IsEmpty() {
		return Output{}, fmt.Errorf("query is empty: provide search terms")
	}
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no search backends configured")
	}

	enhanced := parsed.Enhance(cfg.EnhanceKeywords)
	limit := ClampLimit(opts.Limit)

	type yield struct {
		papers   []types.Paper
		warnings []types.Warning
	}
	yields := make([]yield, len(backends))

	var wg sync.WaitGroup
	for i, b := range backends {
		wg.Add(1)
		go func(i int, b source.Backend) {
			defer wg.Done()
			papers, warnings := b.Fetch(ctx, enhanced, limit)
			yields[i] = yield{papers: papers, warnings: warnings}
		}(i, b)
	}
	wg.Wait()

	var all []types.Paper
	var warnings []types.Warning
	for _, y := range yields {
		all = append(all, y.papers...)
		warnings = append(warnings, y.warnings...)
	}

	deduped, removed := Deduplicate(all)
	Rank(deduped)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	out := Output{
		Papers:      deduped,
		All:         deduped,
		DupsRemoved: removed,
		Warnings:    warnings,
	}
	if opts.FromYear > 0 || opts.ToYear > 0 {
		out.Papers = FilterYears(deduped, opts.FromYear, opts.ToYear)
	}
	return out, nil
}

// Deduplicate drops records whose trimmed, lower-cased title was already
// seen; the first occurrence wins, so the input order decides which source's
// metadata survives a cross-source duplicate. Records with an empty
// normalized title pass through verbatim and never match each other.
func Deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]struct{}, len(papers))
	deduped := make([]types.Paper, 0, len(papers))
	removed := 0

	for _, p := range papers {
		key := dedupKey(p.Title)
		if key == "" {
			deduped = append(deduped, p)
			continue
		}
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped, removed
}

func dedupKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Rank sorts in place by descending citation count. The sort is stable:
// equal-citation records keep their dedup-order relative positions.
func Rank(papers []types.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].CitationCount > papers[j].CitationCount
	})
}

// FilterYears returns the sublist whose resolved year falls inside the
// inclusive [from, to] window; a zero bound is open on that side. Records
// with an unresolved year are excluded from the view, not errored.
func FilterYears(papers []types.Paper, from, to int) []types.Paper {
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if !p.HasYear() {
			continue
		}
		if from > 0 && p.Year < from {
			continue
		}
		if to > 0 && p.Year > to {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FormatTable writes the run's results as a human-readable table.
func FormatTable(out Output, w io.Writer) {
	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-24s  %-7s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 116))

	for i, p := range out.Papers {
		fmt.Fprintf(w, "%-4d  %-60s  %-24s  %-7s  %-6d  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), p.YearString(),
			p.CitationCount, p.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Papers))
	if hidden := len(out.All) - len(out.Papers); hidden > 0 {
		fmt.Fprintf(w, " (%d outside the year window)", hidden)
	}
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the presented results as indented JSON.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Papers)
}

// Highlight wraps each case-insensitive occurrence of a term in ** markers.
// Pass terms longest first so a phrase wins over the words inside it.
// Matching compares rune by rune: characters whose lower-case form has a
// different byte length (Kelvin sign, Ⱥ) must not skew the marker positions.
func Highlight(s string, terms []string) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		s = highlightTerm(s, []rune(term))
	}
	return s
}

func highlightTerm(s string, needle []rune) string {
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); {
		if !foldMatchAt(runes, i, needle) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		b.WriteString("**")
		b.WriteString(string(runes[i : i+len(needle)]))
		b.WriteString("**")
		i += len(needle)
	}
	return b.String()
}

func foldMatchAt(runes []rune, at int, needle []rune) bool {
	if at+len(needle) > len(runes) {
		return false
	}
	for i, r := range needle {
		if unicode.ToLower(runes[at+i]) != unicode.ToLower(r) {
			return false
		}
	}
	return true
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return types.UnknownAuthor
	case 1:
		return truncate(authors[0], 24)
	default:
		return truncate(authors[0], 18) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
