package knowledge

import (
	"context"
	"strings"
	"testing"
)

func testDocs() []Document {
	return []Document{
		{PropertyID: "villa_azul", Topic: "wifi", Content: "WiFi network: VillaAzul-Guest, password: oceanview2026."},
		{PropertyID: "villa_azul", Topic: "pool", Content: "The infinity pool is open daily from 7:00 AM to 10:00 PM."},
		{PropertyID: "villa_azul", Topic: "parking", Content: "Complimentary parking is available in the gated lot."},
		{PropertyID: "casa_sol", Topic: "wifi", Content: "WiFi network: CasaSol, password: sunshine2026."},
	}
}

func TestSearchScopedToProperty(t *testing.T) {
	t.Parallel()

	s := New(testDocs())
	out, err := s.Search(context.Background(), "villa_azul", "what is the wifi password")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !strings.Contains(out, "VillaAzul-Guest") {
		t.Fatalf("expected villa_azul wifi doc, got %q", out)
	}
	if strings.Contains(out, "CasaSol") {
		t.Fatalf("result leaked another property's document: %q", out)
	}
}

func TestSearchMissReturnsFixedString(t *testing.T) {
	t.Parallel()

	s := New(testDocs())
	out, err := s.Search(context.Background(), "villa_azul", "helipad availability")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if out != "No relevant information found." {
		t.Fatalf("miss = %q, want the fixed no-results string", out)
	}

	out, err = s.Search(context.Background(), "unknown_property", "wifi password")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if out != "No relevant information found." {
		t.Fatalf("unknown property = %q, want the fixed no-results string", out)
	}
}

func TestSearchRanksByOverlap(t *testing.T) {
	t.Parallel()

	s := New([]Document{
		{PropertyID: "p", Topic: "pool", Content: "pool towels available"},
		{PropertyID: "p", Topic: "pool hours", Content: "pool open daily, pool hours posted, towels at the pool house"},
	})
	out, err := s.Search(context.Background(), "p", "pool hours towels")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	parts := strings.Split(out, "\n---\n")
	if len(parts) != 2 {
		t.Fatalf("expected both docs, got %d parts", len(parts))
	}
	if !strings.Contains(parts[0], "pool hours posted") {
		t.Fatalf("higher-overlap doc should rank first, got %q", parts[0])
	}
}

func TestSearchCapsSnippets(t *testing.T) {
	t.Parallel()

	docs := make([]Document, 0, 6)
	for i := 0; i < 6; i++ {
		docs = append(docs, Document{PropertyID: "p", Topic: "wifi", Content: "wifi details variant"})
	}
	s := New(docs)
	out, err := s.Search(context.Background(), "p", "wifi details")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := len(strings.Split(out, "\n---\n")); got != 4 {
		t.Fatalf("expected 4 snippets max, got %d", got)
	}
}
