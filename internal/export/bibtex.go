// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/pdiddy/edusearch/internal/cite"
	"github.com/pdiddy/edusearch/pkg/types"
)

const bibDateFmt = "2006-01-02 15:04:05"

// WriteBibTeX writes a complete bibliography document: a metadata comment
// block, then each paper's entry separated by a blank line.
func WriteBibTeX(papers []types.Paper, meta Meta, w io.Writer) error {
	_, err := fmt.Fprintf(w, "%% BibTeX bibliography file\n%% Generated by edusearch\n%% Date: %s\n%% Total entries: %d\n\n",
		meta.Date.Format(bibDateFmt), len(papers))
	if err != nil {
		return fmt.Errorf("writing bibliography header: %w", err)
	}

	for i, p := range papers {
		if i > 0 {
			if _, err := io.WriteString(w, "\n\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, cite.BibTeX(p)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i+1, err)
		}
	}

	if len(papers) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
