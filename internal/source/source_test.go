// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/edusearch/pkg/types"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		keywords []string
		want     bool
	}{
		{
			name:     "keyword in title",
			title:    "Classroom response systems",
			abstract: "A survey.",
			want:     true,
		},
		{
			name:     "keyword in abstract only",
			title:    "Clicker adoption at scale",
			abstract: "Effects on student engagement.",
			want:     true,
		},
		{
			name:     "case insensitive",
			title:    "TEACHING at a distance",
			abstract: "",
			want:     true,
		},
		{
			name:     "no keyword anywhere",
			title:    "Gluon condensates",
			abstract: "Lattice QCD results.",
			want:     false,
		},
		{
			name:     "custom vocabulary",
			title:    "Gluon condensates",
			abstract: "Lattice QCD results.",
			keywords: []string{"lattice"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevant(tt.title, tt.abstract, tt.keywords); got != tt.want {
				t.Errorf("Relevant(%q, %q) = %v, want %v", tt.title, tt.abstract, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(types.Paper{
		Title:         "  Spaced \n repetition  in  vocabulary  drills ",
		Authors:       []string{" Alice Smith ", "", "Bob Jones"},
		Venue:         "  ",
		Abstract:      "",
		CitationCount: -1,
		Year:          -5,
	})

	if got.Title != "Spaced repetition in vocabulary drills" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Venue != types.UnknownVenue {
		t.Errorf("Venue = %q, want sentinel", got.Venue)
	}
	if got.Abstract != types.NoAbstract {
		t.Errorf("Abstract = %q, want sentinel", got.Abstract)
	}
	if got.CitationCount != 0 {
		t.Errorf("CitationCount = %d, want 0", got.CitationCount)
	}
	if got.Year != types.YearUnknown {
		t.Errorf("Year = %d, want YearUnknown", got.Year)
	}
	if got.AuthorString() != "Alice Smith, Bob Jones" {
		t.Errorf("AuthorString = %q", got.AuthorString())
	}
}

func TestNormalizeEmptyPaper(t *testing.T) {
	got := Normalize(types.Paper{})
	if got.Title != types.UnknownTitle {
		t.Errorf("Title = %q, want sentinel", got.Title)
	}
	if got.AuthorString() != types.UnknownAuthor {
		t.Errorf("AuthorString = %q, want sentinel", got.AuthorString())
	}
}

func TestPacerSpacesCalls(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// Every call, the first included, waits out the interval.
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("3 calls took %v, want >= 60ms", elapsed)
	}
}

func TestPacerFirstCallWaits(t *testing.T) {
	p := NewPacer(30 * time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("first call returned after %v, want >= 30ms", elapsed)
	}
}

func TestPacerNilIsNoop(t *testing.T) {
	var p *Pacer
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("nil pacer Wait: %v", err)
	}
}

func TestPacerCancelledContext(t *testing.T) {
	p := NewPacer(time.Hour)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(cancelled); err == nil {
		t.Error("Wait with cancelled context: want error")
	}
}
