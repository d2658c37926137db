// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edusearch/internal/cite"
	"github.com/pdiddy/edusearch/internal/export"
	"github.com/pdiddy/edusearch/internal/query"
	"github.com/pdiddy/edusearch/internal/search"
	"github.com/pdiddy/edusearch/internal/session"
)

// abstractPreviewLen bounds the abstract shown in the details view.
const abstractPreviewLen = 300

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search academic sources for education-research papers",
	Long: `Search queries the enabled sources for papers matching a free-text query.
Double-quoted substrings are treated as exact phrases. Results are filtered
for domain relevance, deduplicated across sources, and ranked by citation
count.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results per source (5-100, default 20)")
	searchCmd.Flags().Int("from-year", 0, "only show papers published in or after this year")
	searchCmd.Flags().Int("to-year", 0, "only show papers published in or before this year")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("details", false, "show abstracts and citation strings per result")
	searchCmd.Flags().Bool("save-all", false, "add every result to the saved set")
	searchCmd.Flags().String("out", "", "also save the query and results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	parsed := query.Parse(raw)

	cfg := loadConfig()
	backends := buildBackends(cfg.Search)

	opts := search.Options{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if opts.Limit == 0 {
		opts.Limit = cfg.Search.MaxResults
	}
	opts.FromYear, _ = cmd.Flags().GetInt("from-year")
	opts.ToYear, _ = cmd.Flags().GetInt("to-year")

	out, err := search.Run(context.Background(), parsed, backends, cfg.Search, opts)
	if err != nil {
		return err
	}

	for _, w := range out.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if err := search.FormatJSON(out, os.Stdout); err != nil {
			return err
		}
	} else if details, _ := cmd.Flags().GetBool("details"); details {
		formatDetails(out, parsed.HighlightTerms(), os.Stdout)
	} else {
		search.FormatTable(out, os.Stdout)
	}

	if saveAll, _ := cmd.Flags().GetBool("save-all"); saveAll {
		store, err := session.Open(cfg.Session)
		if err != nil {
			return err
		}
		defer store.Close()

		added, err := store.SaveAll(context.Background(), out.Papers)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nSaved %d new paper(s) to the saved set.\n", added)
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		params := export.QueryParams{
			Raw:      raw,
			Limit:    opts.Limit,
			FromYear: opts.FromYear,
			ToYear:   opts.ToYear,
		}
		if err := export.WriteQueryFile(outPath, params, out.Papers, out.DupsRemoved, out.Warnings); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", outPath)
	}

	return nil
}

// formatDetails writes one block per result: rank line, APA citation, and a
// bounded abstract preview with the query terms highlighted.
func formatDetails(out search.Output, terms []string, w *os.File) {
	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	for i, p := range out.Papers {
		fmt.Fprintf(w, "%d. %s (%s, %d citations) [%s]\n",
			i+1, search.Highlight(p.Title, terms), p.YearString(), p.CitationCount, p.Source)
		fmt.Fprintf(w, "   %s\n", cite.APA(p))
		if p.HasAbstract() {
			fmt.Fprintf(w, "   %s\n", search.Highlight(truncateAbstract(p.Abstract), terms))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d results", len(out.Papers))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

func truncateAbstract(s string) string {
	if len(s) <= abstractPreviewLen {
		return s
	}
	return s[:abstractPreviewLen] + "..."
}
