// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query parses free-text search input into exact phrases and loose
// terms, and builds the enhanced query sent to remote backends.
package query

import (
	"strings"

	"github.com/pdiddy/edusearch/pkg/types"
)

// Parsed holds the structured form of a raw query: double-quoted substrings
// as exact phrases, everything else split into loose terms. Rebuilt per
// search, never persisted.
type Parsed struct {
	Phrases []string
	Terms   []string
}

// IsEmpty reports whether the query contains no searchable input.
func (p Parsed) IsEmpty() bool {
	return len(p.Phrases) == 0 && len(p.Terms) == 0
}

// Parse extracts every double-quoted substring of raw as an exact phrase,
// in order of first appearance, with the quoted content preserved verbatim
// including interior whitespace. The remainder is split on whitespace into
// loose terms. An unmatched trailing quote is not an error: the quote
// character stays in the loose-term stream as a literal.
func Parse(raw string) Parsed {
	var phrases []string
	var loose strings.Builder

	rest := raw
	for {
		open := strings.IndexByte(rest, '"')
		if open < 0 {
			loose.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open+1:], '"')
		if end < 0 {
			// Odd quote count: keep the tail, quote included, as loose text.
			loose.WriteString(rest)
			break
		}
		loose.WriteString(rest[:open])
		loose.WriteByte(' ')
		phrases = append(phrases, rest[open+1:open+1+end])
		rest = rest[open+end+2:]
	}

	return Parsed{
		Phrases: phrases,
		Terms:   strings.Fields(loose.String()),
	}
}

// Enhance builds the query string sent to remote backends: each phrase
// re-wrapped in quotes, each loose term, and a disjunction of the domain
// vocabulary to bias the remote ranking toward the target domain. An empty
// keyword list falls back to the education defaults. An empty parsed query
// yields the disjunction alone.
func (p Parsed) Enhance(keywords []string) string {
	if len(keywords) == 0 {
		keywords = types.DefaultEnhanceKeywords()
	}

	parts := make([]string, 0, len(p.Phrases)+len(p.Terms)+1)
	for _, ph := range p.Phrases {
		parts = append(parts, `"`+ph+`"`)
	}
	parts = append(parts, p.Terms...)
	parts = append(parts, strings.Join(keywords, " OR "))
	return strings.Join(parts, " ")
}

// HighlightTerms returns the strings worth highlighting in displayed
// results: all phrases and loose terms, longest first so nested matches
// prefer the longer phrase.
func (p Parsed) HighlightTerms() []string {
	out := make([]string, 0, len(p.Phrases)+len(p.Terms))
	out = append(out, p.Phrases...)
	out = append(out, p.Terms...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
