// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the edusearch pipeline.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel values substituted at the source-mapping boundary for fields the
// backend omitted. Downstream stages never see a null or empty required field.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
	UnknownVenue  = "Unknown Venue"
	NoAbstract    = "No abstract available"

	// YearUnknown marks a paper whose publication year could not be resolved.
	YearUnknown = 0

	// UnknownYearLabel is the text rendered in place of an unresolved year.
	UnknownYearLabel = "Unknown"
)

// Paper is one bibliographic record, normalized from whichever backend
// produced it. Title is never empty once constructed; CitationCount is
// never negative; Year is a resolved year or YearUnknown.
type Paper struct {
	// Title is the paper title, or UnknownTitle if the source omitted it.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order. Empty means the
	// source reported no authors; AuthorString renders the sentinel.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, or YearUnknown.
	Year int `json:"year" yaml:"year"`

	// Abstract is the paper abstract, or NoAbstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Venue is the journal or conference name, or UnknownVenue.
	Venue string `json:"venue" yaml:"venue"`

	// CitationCount is the number of citing works reported by the source.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// URL links to the paper landing page; may be empty.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Source identifies the backend that produced this record
	// (e.g. "semantic_scholar", "scholar"). Exactly one per record.
	Source string `json:"source" yaml:"source"`

	// PublicationDate is the full date string if the source provided one.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// HasYear reports whether the publication year was resolved.
func (p Paper) HasYear() bool { return p.Year != YearUnknown }

// YearString renders the year, or UnknownYearLabel when unresolved.
func (p Paper) YearString() string {
	if !p.HasYear() {
		return UnknownYearLabel
	}
	return strconv.Itoa(p.Year)
}

// AuthorString joins the author names for display, or returns the
// UnknownAuthor sentinel when the source reported none.
func (p Paper) AuthorString() string {
	if len(p.Authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(p.Authors, ", ")
}

// HasAbstract reports whether a real abstract is present.
func (p Paper) HasAbstract() bool {
	return p.Abstract != "" && p.Abstract != NoAbstract
}

// WarningKind classifies a degraded-fetch condition.
type WarningKind string

const (
	// WarnRateLimited: the backend kept refusing after bounded backoff.
	WarnRateLimited WarningKind = "rate_limited"

	// WarnNetwork: transient connectivity failures exhausted their retries.
	WarnNetwork WarningKind = "network_error"

	// WarnMalformed: the backend answered with something unparseable; the
	// records decoded before the fault were kept.
	WarnMalformed WarningKind = "malformed_response"

	// WarnSourceBlocked: a scrape backend detected an anti-automation block
	// and stopped early.
	WarnSourceBlocked WarningKind = "source_blocked"

	// WarnItemParse: individual result items were skipped as unparseable.
	WarnItemParse WarningKind = "item_parse_error"
)

// Warning describes a non-fatal condition encountered while fetching from
// one backend. Fetches degrade to partial or empty results plus warnings;
// they never surface errors to the caller.
type Warning struct {
	Source  string      `json:"source" yaml:"source"`
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s [%s]: %s", w.Source, w.Kind, w.Message)
}
