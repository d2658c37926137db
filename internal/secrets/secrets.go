// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the trimmed
// contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// keySemanticScholar is the filename holding the Semantic Scholar API key.
const keySemanticScholar = "semantic-scholar-api-key"

// Secrets is the key material loaded from a workspace secrets directory.
type Secrets map[string]string

// SemanticScholarAPIKey returns the Semantic Scholar API key, or "" when
// its key file is absent.
func (s Secrets) SemanticScholarAPIKey() string {
	return s[keySemanticScholar]
}

// Names returns the loaded key names, sorted.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads every regular file in dir into a Secrets map. A missing
// directory is not an error; Load returns an empty map. An unreadable file
// produces a warning on stderr but does not abort the rest.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	loaded := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		value, err := readSecret(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value != "" {
			loaded[name] = value
		}
	}

	return loaded, nil
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
