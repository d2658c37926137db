// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists the saved set: the papers a user curates across
// searches within one working session. The set lives in a small SQLite
// database under the session directory and is deduplicated by normalized
// title, so saving the same paper twice is a no-op.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/edusearch/pkg/types"
)

const dbFile = "saved.db"

// Store manages the saved-set database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the saved-set database at dir/saved.db, creating
// the schema if needed.
func Open(cfg types.SessionConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = types.DefaultConfig().Session.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening saved-set database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS saved (
		rowid INTEGER PRIMARY KEY AUTOINCREMENT,
		norm_title TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		authors TEXT,
		year INTEGER,
		abstract TEXT,
		venue TEXT,
		citation_count INTEGER,
		url TEXT,
		source TEXT,
		publication_date TEXT,
		saved_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Save appends one paper to the saved set. It reports whether the paper
// was actually added; a duplicate title leaves the set unchanged.
func (s *Store) Save(ctx context.Context, p types.Paper) (bool, error) {
	authorsJSON, _ := json.Marshal(p.Authors)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO saved (norm_title, title, authors, year, abstract, venue,
			citation_count, url, source, publication_date, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(norm_title) DO NOTHING`,
		normTitle(p.Title), p.Title, string(authorsJSON), p.Year, p.Abstract,
		p.Venue, p.CitationCount, p.URL, p.Source, p.PublicationDate,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("saving paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking save result: %w", err)
	}
	return n > 0, nil
}

// SaveAll appends every paper in order and returns how many were new.
func (s *Store) SaveAll(ctx context.Context, papers []types.Paper) (int, error) {
	added := 0
	for _, p := range papers {
		ok, err := s.Save(ctx, p)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// List returns the saved papers in the order they were saved.
func (s *Store) List(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, authors, year, abstract, venue, citation_count, url, source, publication_date
		 FROM saved ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing saved papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		var authorsJSON string
		if err := rows.Scan(&p.Title, &authorsJSON, &p.Year, &p.Abstract, &p.Venue,
			&p.CitationCount, &p.URL, &p.Source, &p.PublicationDate); err != nil {
			return nil, fmt.Errorf("scanning saved paper: %w", err)
		}
		if authorsJSON != "" {
			if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors for %q: %w", p.Title, err)
			}
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Count returns the number of saved papers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM saved`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting saved papers: %w", err)
	}
	return n, nil
}

// Clear removes every saved paper.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved`); err != nil {
		return fmt.Errorf("clearing saved set: %w", err)
	}
	return nil
}

func normTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
