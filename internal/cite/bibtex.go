// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"fmt"
	"strings"

	"github.com/pdiddy/edusearch/pkg/types"
)

// minAbstractLen is the shortest abstract worth carrying into an entry;
// anything at or under it is treated as placeholder noise.
const minAbstractLen = 10

// entryClass maps a venue keyword to a BibTeX entry type and the name of
// its container field.
type entryClass struct {
	entryType string
	container string
}

// venueClasses is scanned in order against the lower-cased venue. The first
// keyword hit decides the class; venues matching nothing fall back to misc.
var venueClasses = []struct {
	keyword string
	class   entryClass
}{
	{"conference", entryClass{"inproceedings", "booktitle"}},
	{"proceedings", entryClass{"inproceedings", "booktitle"}},
	{"workshop", entryClass{"inproceedings", "booktitle"}},
	{"symposium", entryClass{"inproceedings", "booktitle"}},
	{"journal", entryClass{"article", "journal"}},
	{"transactions", entryClass{"article", "journal"}},
	{"letters", entryClass{"article", "journal"}},
}

var miscClass = entryClass{"misc", "howpublished"}

func classify(venue string) entryClass {
	v := strings.ToLower(venue)
	for _, vc := range venueClasses {
		if strings.Contains(v, vc.keyword) {
			return vc.class
		}
	}
	return miscClass
}

// BibTeXKey derives the deterministic entry key: last token of the first
// author's name, the year string, and the first token of the title,
// concatenated with spaces and commas stripped.
func BibTeXKey(p types.Paper) string {
	author := "Unknown"
	if len(p.Authors) > 0 {
		if toks := strings.Fields(p.Authors[0]); len(toks) > 0 {
			author = toks[len(toks)-1]
		}
	}

	title := ""
	if toks := strings.Fields(p.Title); len(toks) > 0 {
		title = toks[0]
	}

	key := author + p.YearString() + title
	key = strings.ReplaceAll(key, " ", "")
	key = strings.ReplaceAll(key, ",", "")
	return key
}

// BibTeX renders one complete bibliography entry. The venue decides the
// entry type and container field; url and abstract are appended only when
// they carry content.
func BibTeX(p types.Paper) string {
	class := classify(p.Venue)

	fields := []string{
		fmt.Sprintf("title = {%s}", p.Title),
		fmt.Sprintf("author = {%s}", bibAuthors(p.Authors)),
		fmt.Sprintf("%s = {%s}", class.container, p.Venue),
		fmt.Sprintf("year = {%s}", p.YearString()),
	}
	if p.URL != "" {
		fields = append(fields, fmt.Sprintf("url = {%s}", p.URL))
	}
	if p.HasAbstract() && len(p.Abstract) > minAbstractLen {
		fields = append(fields, fmt.Sprintf("abstract = {%s}", escapeBibTeX(p.Abstract)))
	}

	return fmt.Sprintf("@%s{%s,\n  %s\n}", class.entryType, BibTeXKey(p), strings.Join(fields, ",\n  "))
}

func bibAuthors(authors []string) string {
	if len(authors) == 0 {
		return types.UnknownAuthor
	}
	return strings.Join(authors, " and ")
}

// escapeBibTeX backslash-escapes the characters the grammar reserves:
// braces delimit fields, percent starts a comment.
func escapeBibTeX(s string) string {
	r := strings.NewReplacer("{", `\{`, "}", `\}`, "%", `\%`)
	return r.Replace(s)
}
