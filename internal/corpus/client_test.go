package corpus

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const bookBody = "Produced by volunteers.\n*** START OF THE PROJECT GUTENBERG EBOOK 1234 ***\nIt was the best of times, it was the worst of times.\n*** END OF THE PROJECT GUTENBERG EBOOK 1234 ***\nLicense text here."

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/books"):
			if r.URL.Query().Get("languages") != "en" {
				t.Errorf("missing languages filter, got %q", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{
						"title":   "A Tale of Two Cities",
						"authors": []map[string]any{{"name": "Dickens, Charles"}},
						"formats": map[string]string{
							"text/plain; charset=utf-8": server.URL + "/text/98",
						},
					},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/text/"):
			w.Write([]byte(bookBody))
		default:
			http.NotFound(w, r)
		}
	}))
	return server
}

func TestDocumentByLevel(t *testing.T) {
	server := newCatalogServer(t)
	defer server.Close()

	c := NewClient(server.URL, rand.New(rand.NewSource(1)))

	doc, err := c.DocumentByLevel(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "A Tale of Two Cities" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Author != "Dickens, Charles" {
		t.Errorf("author = %q", doc.Author)
	}
	if doc.RawText != "It was the best of times, it was the worst of times." {
		t.Errorf("raw text not stripped of boilerplate: %q", doc.RawText)
	}
}

func TestDocumentByLevelNoTextFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"title":   "Images Only",
					"authors": []map[string]any{},
					"formats": map[string]string{"image/jpeg": "http://example.com/cover.jpg"},
				},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, rand.New(rand.NewSource(1)))

	if _, err := c.DocumentByLevel(context.Background(), 1); err == nil {
		t.Fatal("expected error when no plain-text format exists")
	}
}

func TestPageForLevelGrowsWithLevel(t *testing.T) {
	c := NewClient("", rand.New(rand.NewSource(1)))

	low := c.pageForLevel(1)
	high := c.pageForLevel(10)
	if low < 1 {
		t.Errorf("page for level 1 = %d, want >= 1", low)
	}
	if high <= low {
		t.Errorf("expected deeper page for level 10 (got %d) than level 1 (got %d)", high, low)
	}
}

func TestStripGutenbergBoilerplate(t *testing.T) {
	t.Run("no markers", func(t *testing.T) {
		if got := stripGutenbergBoilerplate("  plain text  "); got != "plain text" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("markers removed", func(t *testing.T) {
		got := stripGutenbergBoilerplate(bookBody)
		if strings.Contains(got, "START OF") || strings.Contains(got, "License") {
			t.Errorf("boilerplate survived: %q", got)
		}
	})
}
