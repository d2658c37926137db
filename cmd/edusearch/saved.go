// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edusearch/internal/export"
	"github.com/pdiddy/edusearch/internal/session"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage the saved set of curated papers",
	Long: `Saved manages the session's curated paper set. Papers enter the set via
search --save-all or saved add, survive across searches, and feed the
export subcommand.`,
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the saved papers in save order",
	RunE:  runSavedList,
}

var savedAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add papers from a saved query file",
	Long: `Add loads a YAML query file written by search --out and appends its
results to the saved set. Use --index to add a single result by its
1-based position; omit it to add all.`,
	RunE: runSavedAdd,
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every paper from the saved set",
	RunE:  runSavedClear,
}

func init() {
	savedListCmd.Flags().Bool("json", false, "output as JSON")

	savedAddCmd.Flags().String("from", "", "query file to load results from (required)")
	savedAddCmd.Flags().Int("index", 0, "1-based result index to add; 0 adds all")
	savedAddCmd.MarkFlagRequired("from")

	savedCmd.AddCommand(savedListCmd, savedAddCmd, savedClearCmd)
	rootCmd.AddCommand(savedCmd)
}

func openStore() (*session.Store, error) {
	return session.Open(loadConfig().Session)
}

func runSavedList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("Saved set is empty.")
		return nil
	}
	for i, p := range papers {
		fmt.Printf("%d. %s (%s, %d citations) [%s]\n",
			i+1, p.Title, p.YearString(), p.CitationCount, p.Source)
	}
	fmt.Printf("\n%d saved paper(s)\n", len(papers))
	return nil
}

func runSavedAdd(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("from")
	index, _ := cmd.Flags().GetInt("index")

	qf, err := export.ReadQueryFile(path)
	if err != nil {
		return err
	}

	papers := qf.Results
	if index != 0 {
		if index < 1 || index > len(papers) {
			return fmt.Errorf("index %d out of range: file has %d result(s)", index, len(papers))
		}
		papers = papers[index-1 : index]
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	added, err := store.SaveAll(context.Background(), papers)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %d new paper(s); %d duplicate(s) skipped.\n", added, len(papers)-added)
	return nil
}

func runSavedClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Println("Saved set cleared.")
	return nil
}
