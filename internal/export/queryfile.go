// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/edusearch/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results. A
// saved search can be reloaded later without re-querying the sources.
type QueryFile struct {
	Query   QueryParams   `yaml:"query"`
	Results []types.Paper `yaml:"results"`
	Summary QuerySummary  `yaml:"summary"`
}

// QueryParams stores the search inputs in a serializable form.
type QueryParams struct {
	Raw      string `yaml:"raw"`
	Limit    int    `yaml:"limit,omitempty"`
	FromYear int    `yaml:"from_year,omitempty"`
	ToYear   int    `yaml:"to_year,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	Warnings          []string  `yaml:"warnings,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the search inputs and results to a YAML file.
func WriteQueryFile(path string, params QueryParams, papers []types.Paper, dupsRemoved int, warnings []types.Warning) error {
	qf := QueryFile{
		Query:   params,
		Results: papers,
		Summary: QuerySummary{
			Total:             len(papers),
			DuplicatesRemoved: dupsRemoved,
			Timestamp:         time.Now(),
		},
	}
	for _, w := range warnings {
		qf.Summary.Warnings = append(qf.Summary.Warnings, w.String())
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
