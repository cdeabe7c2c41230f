// ABOUTME: Remote catalog client: lists archive names and streams archive bytes
// ABOUTME: Built on go-resty; non-200 fetches surface as *StatusError

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/luulek/depotfetch/internal/archive"
	"github.com/luulek/depotfetch/internal/config"
	"github.com/luulek/depotfetch/internal/log"
)

const userAgent = "depotfetch"

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// entry is one element of the index listing. Only the name is used.
type entry struct {
	Name string `json:"name"`
}

// Client talks to the catalog index and the raw archive host.
type Client struct {
	http      *resty.Client
	endpoints config.Endpoints
}

// New creates a Client for the given endpoints. No request timeout is set;
// a hung request stalls only the batch that issued it.
func New(endpoints config.Endpoints) *Client {
	c := resty.New()
	c.SetHeader("User-Agent", userAgent)
	return &Client{http: c, endpoints: endpoints}
}

// List fetches the index and returns the archive names it contains, sorted
// case-insensitively.
func (c *Client) List(ctx context.Context) ([]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github.v3+json").
		Get(c.endpoints.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching index: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{URL: c.endpoints.IndexURL, Code: resp.StatusCode(), Status: resp.Status()}
	}

	var entries []entry
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	names = Archives(names)
	log.Debug("catalog: %d archives of %d index entries", len(names), len(entries))
	return names, nil
}

// Fetch opens the archive named item. The caller must close the returned
// reader. A non-200 response yields *StatusError.
func (c *Client) Fetch(ctx context.Context, item string) (io.ReadCloser, error) {
	u := c.ArchiveURL(item)
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(u)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", item, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != 200 {
		body.Close()
		return nil, &StatusError{URL: u, Code: resp.StatusCode(), Status: resp.Status()}
	}
	return body, nil
}

// ArchiveURL returns the deterministic download URL for item.
func (c *Client) ArchiveURL(item string) string {
	return strings.TrimRight(c.endpoints.RawBaseURL, "/") + "/" + url.PathEscape(item)
}

// Archives keeps the names carrying the archive extension (any letter case)
// and sorts them case-insensitively. Names are normalized to NFC.
func Archives(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = norm.NFC.String(n)
		if strings.HasSuffix(strings.ToLower(n), archive.Extension) {
			out = append(out, n)
		}
	}

	fold := cases.Fold()
	slices.SortStableFunc(out, func(a, b string) int {
		return strings.Compare(fold.String(a), fold.String(b))
	})
	return out
}
