package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/bookstore-assistant/internal/normalize"
)

const (
	DefaultBaseURL = "https://openlibrary.org"
	userAgent      = "BookstoreAssistant/1.0 (inventory enrichment)"
)

// ErrNotFound means OpenLibrary has no edition for the identifier.
var ErrNotFound = errors.New("isbn not found")

// BookMetadata contains book information from OpenLibrary.
type BookMetadata struct {
	ISBN        string   `json:"isbn"`
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewOpenLibraryClient creates a client allowing one request per interval.
// An empty baseURL uses DefaultBaseURL.
func NewOpenLibraryClient(baseURL string, interval time.Duration) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// LookupISBN fetches the edition for isbn. The description and subjects
// fall back to the parent work when the edition has none.
func (c *OpenLibraryClient) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalize.NormalizeISBN(isbn)
	if len(isbn) != 10 && len(isbn) != 13 {
		return nil, fmt.Errorf("invalid ISBN %q", isbn)
	}

	var edition openLibraryEdition
	if err := c.getJSON(ctx, fmt.Sprintf("/isbn/%s.json", isbn), &edition); err != nil {
		return nil, err
	}

	metadata := &BookMetadata{
		ISBN:        isbn,
		Title:       strings.TrimSpace(edition.Title),
		Description: textValue(edition.Description),
		Subjects:    edition.Subjects,
	}

	if (metadata.Description == "" || len(metadata.Subjects) == 0) && len(edition.Works) > 0 {
		var work openLibraryWork
		if err := c.getJSON(ctx, edition.Works[0].Key+".json", &work); err == nil {
			if metadata.Description == "" {
				metadata.Description = textValue(work.Description)
			}
			if len(metadata.Subjects) == 0 {
				metadata.Subjects = work.Subjects
			}
		}
	}

	if len(edition.Authors) > 0 {
		if name, err := c.fetchAuthorName(ctx, edition.Authors[0].Key); err == nil {
			metadata.Author = name
		}
	}

	return metadata, nil
}

func (c *OpenLibraryClient) fetchAuthorName(ctx context.Context, authorKey string) (string, error) {
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	var author struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, authorKey+".json", &author); err != nil {
		return "", err
	}
	return strings.TrimSpace(author.Name), nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, v any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// textValue reads a field that is either a string or {"type": ..., "value": ...}.
func textValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if s, ok := val["value"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// OpenLibrary API response types (internal)

type keyRef struct {
	Key string `json:"key"`
}

type openLibraryEdition struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Authors     []keyRef `json:"authors"`
	Works       []keyRef `json:"works"`
	Description any      `json:"description"`
	Subjects    []string `json:"subjects"`
}

type openLibraryWork struct {
	Key         string   `json:"key"`
	Description any      `json:"description"`
	Subjects    []string `json:"subjects"`
}
