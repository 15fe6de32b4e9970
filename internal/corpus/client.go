// Package corpus fetches public-domain books from a Gutendex-style catalog.
// The service is slow and sometimes returns non-narrative text; the quality
// scorer downstream compensates.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clozereader/internal/models"
)

const (
	defaultBaseURL = "https://gutendex.com"
	requestTimeout = 30 * time.Second

	// Download cap: a full novel is more than enough to sample from.
	maxDocumentBytes = 2 << 20
)

var textFormatKeys = []string{
	"text/plain; charset=utf-8",
	"text/plain; charset=us-ascii",
	"text/plain",
}

// Client fetches documents from the book catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
	rng        *rand.Rand
}

// NewClient creates a corpus client. An empty baseURL uses the public
// Gutendex instance.
func NewClient(baseURL string, rng *rand.Rand) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		rng:        rng,
	}
}

type catalogPage struct {
	Results []catalogBook `json:"results"`
}

type catalogBook struct {
	Title   string            `json:"title"`
	Authors []catalogAuthor   `json:"authors"`
	Formats map[string]string `json:"formats"`
}

type catalogAuthor struct {
	Name string `json:"name"`
}

// DocumentByLevel fetches a random English fiction book. Higher levels reach
// deeper into the catalog, away from the most popular titles, which tends
// toward denser prose.
func (c *Client) DocumentByLevel(ctx context.Context, level int) (models.Document, error) {
	page := c.pageForLevel(level)

	books, err := c.fetchCatalogPage(ctx, page)
	if err != nil {
		return models.Document{}, err
	}

	// Shuffle so a retry after a bad book lands somewhere else.
	order := c.rng.Perm(len(books))
	for _, i := range order {
		book := books[i]
		textURL, ok := plainTextURL(book)
		if !ok {
			continue
		}

		raw, err := c.fetchText(ctx, textURL)
		if err != nil {
			continue
		}

		return models.Document{
			Title:   book.Title,
			Author:  authorName(book),
			RawText: stripGutenbergBoilerplate(raw),
		}, nil
	}

	return models.Document{}, errors.New("no downloadable plain-text book on catalog page")
}

func (c *Client) pageForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	base := (level-1)*2 + 1
	return base + c.rng.Intn(3)
}

func (c *Client) fetchCatalogPage(ctx context.Context, page int) ([]catalogBook, error) {
	params := url.Values{}
	params.Set("languages", "en")
	params.Set("topic", "fiction")
	params.Set("page", fmt.Sprintf("%d", page))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/books?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected catalog status code: %d", resp.StatusCode)
	}

	var parsed catalogPage
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode catalog page: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, errors.New("catalog page has no books")
	}

	return parsed.Results, nil
}

func (c *Client) fetchText(ctx context.Context, textURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", textURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create text request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch book text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected text status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read book text: %w", err)
	}

	return string(data), nil
}

func plainTextURL(book catalogBook) (string, bool) {
	for _, key := range textFormatKeys {
		if u, ok := book.Formats[key]; ok && !strings.HasSuffix(u, ".zip") {
			return u, true
		}
	}
	return "", false
}

func authorName(book catalogBook) string {
	if len(book.Authors) == 0 {
		return "Unknown"
	}
	return book.Authors[0].Name
}

// stripGutenbergBoilerplate removes the licensing header and footer around
// the book body.
func stripGutenbergBoilerplate(text string) string {
	if idx := strings.Index(text, "*** START OF"); idx >= 0 {
		if nl := strings.IndexByte(text[idx:], '\n'); nl >= 0 {
			text = text[idx+nl+1:]
		}
	}
	if idx := strings.Index(text, "*** END OF"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
