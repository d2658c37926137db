// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite renders a single paper into citation formats. All renderers
// are pure functions: given a well-formed Paper they cannot fail, because
// missing fields were already resolved to sentinels at the source boundary.
package cite

import (
	"fmt"
	"strings"

	"github.com/pdiddy/edusearch/pkg/types"
)

// APA renders an APA-style reference line:
//
//	Authors (Year). Title. *Venue*. URL
//
// The URL segment is omitted entirely when the record has none.
func APA(p types.Paper) string {
	venue := p.Venue
	if strings.TrimSpace(venue) == "" {
		venue = types.UnknownVenue
	}
	s := fmt.Sprintf("%s (%s). %s. *%s*.", p.AuthorString(), p.YearString(), p.Title, venue)
	if p.URL != "" {
		s += " " + p.URL
	}
	return s
}
