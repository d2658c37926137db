// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export batches papers into full export documents: a tabular CSV,
// a BibTeX bibliography, a CSL-YAML list, and a reloadable YAML query file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pdiddy/edusearch/internal/cite"
	"github.com/pdiddy/edusearch/pkg/types"
)

// Meta carries the search context stamped onto every exported row.
type Meta struct {
	Query string
	Date  time.Time
}

// csvHeader is the fixed, order-significant column schema.
var csvHeader = []string{
	"No.", "title", "author", "year", "journal", "cites",
	"abstract", "URL", "APA style", "search words", "search date", "data source",
}

const csvDateFmt = "2006-01-02 15:04:05"

// WriteCSV writes one header row plus one row per paper in collection
// order, sequence numbers 1-based.
func WriteCSV(papers []types.Paper, meta Meta, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	date := meta.Date.Format(csvDateFmt)
	for i, p := range papers {
		row := []string{
			strconv.Itoa(i + 1),
			p.Title,
			p.AuthorString(),
			p.YearString(),
			p.Venue,
			strconv.Itoa(p.CitationCount),
			p.Abstract,
			p.URL,
			cite.APA(p),
			meta.Query,
			date,
			p.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DefaultName returns the timestamped default export filename, e.g.
// "results_20260115_093042.csv".
func DefaultName(ext string, now time.Time) string {
	return fmt.Sprintf("results_%s.%s", now.Format("20060102_150405"), ext)
}
