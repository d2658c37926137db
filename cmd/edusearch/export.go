// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edusearch/internal/cite"
	"github.com/pdiddy/edusearch/internal/export"
	"github.com/pdiddy/edusearch/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved set as CSV, BibTeX, or CSL",
	Long: `Export renders the saved set into a citation document. Files land in the
export directory under a timestamped name unless --out is given.`,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write the saved set as a CSV table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "csv", func(papers []types.Paper, meta export.Meta, f *os.File) error {
			return export.WriteCSV(papers, meta, f)
		})
	},
}

var exportBibTeXCmd = &cobra.Command{
	Use:   "bibtex",
	Short: "Write the saved set as a BibTeX bibliography",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "bib", func(papers []types.Paper, meta export.Meta, f *os.File) error {
			return export.WriteBibTeX(papers, meta, f)
		})
	},
}

var exportCSLCmd = &cobra.Command{
	Use:   "csl",
	Short: "Write the saved set as a CSL-YAML bibliography",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "yaml", func(papers []types.Paper, _ export.Meta, f *os.File) error {
			return cite.WriteCSL(papers, f)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{exportCSVCmd, exportBibTeXCmd, exportCSLCmd} {
		c.Flags().String("out", "", "output file path (default: timestamped file in the export directory)")
		c.Flags().String("from", "", "export a query file's results instead of the saved set")
		exportCmd.AddCommand(c)
	}
	exportCSVCmd.Flags().String("query", "", "search words stamped onto every CSV row")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, ext string, write func([]types.Paper, export.Meta, *os.File) error) error {
	cfg := loadConfig()

	papers, queryWords, err := exportInput(cmd)
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		return fmt.Errorf("nothing to export: the saved set is empty")
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
		outPath = filepath.Join(cfg.Export.Dir, export.DefaultName(ext, time.Now()))
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	meta := export.Meta{Query: queryWords, Date: time.Now()}
	if err := write(papers, meta, f); err != nil {
		return err
	}

	fmt.Printf("Wrote %d paper(s) to %s\n", len(papers), outPath)
	return nil
}

// exportInput resolves the records to export: a query file when --from is
// given, the saved set otherwise.
func exportInput(cmd *cobra.Command) ([]types.Paper, string, error) {
	queryWords, _ := cmd.Flags().GetString("query")

	if fromPath, _ := cmd.Flags().GetString("from"); fromPath != "" {
		qf, err := export.ReadQueryFile(fromPath)
		if err != nil {
			return nil, "", err
		}
		if queryWords == "" {
			queryWords = qf.Query.Raw
		}
		return qf.Results, queryWords, nil
	}

	store, err := openStore()
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	papers, err := store.List(context.Background())
	if err != nil {
		return nil, "", err
	}
	return papers, queryWords, nil
}
