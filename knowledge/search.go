// Package knowledge implements the property-information collaborator: a
// small keyword-scored retrieval over per-property documents. It satisfies
// the same contract a vector store would (top snippets in, joined text out,
// "no results" on a miss, never an error for a normal empty search).
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	maxSnippets = 4
	noResults   = "No relevant information found."
	separator   = "\n---\n"
)

// Document is one retrievable snippet about a property.
type Document struct {
	PropertyID string `json:"property_id"`
	Topic      string `json:"topic"`
	Content    string `json:"content"`
}

// Store holds the loaded document set. Read-only after construction, safe
// for concurrent searches.
type Store struct {
	docs []Document
}

func New(docs []Document) *Store {
	return &Store{docs: append([]Document(nil), docs...)}
}

// Load reads a JSON array of documents from disk.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read property documents: %w", err)
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode property documents: %w", err)
	}
	return New(docs), nil
}

// Search returns up to four snippets for the property ranked by term
// overlap with the query, joined with a separator. A miss returns the
// fixed no-results string with a nil error.
func (s *Store) Search(ctx context.Context, propertyID, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	terms := tokenize(query)
	type scored struct {
		doc   Document
		score int
		index int
	}

	var hits []scored
	for i, doc := range s.docs {
		if doc.PropertyID != propertyID {
			continue
		}
		score := overlap(terms, tokenize(doc.Topic+" "+doc.Content))
		if score > 0 {
			hits = append(hits, scored{doc: doc, score: score, index: i})
		}
	}
	if len(hits) == 0 {
		return noResults, nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].index < hits[j].index
	})
	if len(hits) > maxSnippets {
		hits = hits[:maxSnippets]
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.doc.Content)
	}
	return strings.Join(parts, separator), nil
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}

func overlap(query, doc map[string]struct{}) int {
	n := 0
	for term := range query {
		if _, ok := doc[term]; ok {
			n++
		}
	}
	return n
}
