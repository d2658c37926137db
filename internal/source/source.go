// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches bibliographic records from remote backends and
// normalizes them into the shared Paper model. Each backend implements the
// Backend interface per the Strategy pattern; all failures degrade to
// partial or empty results plus warnings.
package source

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/edusearch/pkg/types"
)

// Backend fetches candidate papers for an enhanced query from one remote
// system. Fetch never returns an error: rate limiting, connectivity
// failures, and malformed responses are converted into warnings so one
// failing source cannot void the others' yield.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, enhancedQuery string, limit int) ([]types.Paper, []types.Warning)
}

// Pacer imposes a minimum delay before every outbound call to stay under
// informal rate limits. A nil Pacer waits for nothing.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer that allows one call per minDelay, no bursting
// and no head start: the first Wait already blocks for the full interval.
func NewPacer(minDelay time.Duration) *Pacer {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	l := rate.NewLimiter(rate.Every(minDelay), 1)
	l.Allow() // drain the initial token so the first call waits too
	return &Pacer{limiter: l}
}

// Wait blocks until the pacer allows the next call or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Relevant reports whether a record plausibly belongs to the target domain:
// at least one vocabulary keyword appears as a substring of the lowercased
// title+abstract. High recall by intent; the enhanced query has already
// biased the remote ranking, so this gate only rejects obvious leakage.
func Relevant(title, abstract string, keywords []string) bool {
	if len(keywords) == 0 {
		keywords = types.DefaultRelevanceKeywords()
	}
	text := strings.ToLower(title + " " + abstract)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Normalize applies the sentinel defaults that keep the Paper invariants:
// non-empty title, non-negative citation count, explicit unknown markers
// instead of empty required fields.
func Normalize(p types.Paper) types.Paper {
	p.Title = collapseSpace(p.Title)
	if p.Title == "" {
		p.Title = types.UnknownTitle
	}
	if strings.TrimSpace(p.Venue) == "" {
		p.Venue = types.UnknownVenue
	}
	if strings.TrimSpace(p.Abstract) == "" {
		p.Abstract = types.NoAbstract
	}
	if p.CitationCount < 0 {
		p.CitationCount = 0
	}
	if p.Year < 0 {
		p.Year = types.YearUnknown
	}

	authors := p.Authors[:0]
	for _, a := range p.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	p.Authors = authors
	return p
}

// collapseSpace trims and squeezes runs of whitespace (sources pad titles
// with newlines).
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func warn(source string, kind types.WarningKind, msg string) types.Warning {
	return types.Warning{Source: source, Kind: kind, Message: msg}
}
