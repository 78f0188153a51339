// Package itunes provides a client for the iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/hearo/internal/domain/track"
)

// Error kinds. Returned errors are marked with one of these; test with errors.Is.
var (
	ErrEmptyQuery = errors.New("search query is empty")
	ErrNetwork    = errors.New("catalog request failed")
	ErrStatus     = errors.New("catalog returned an error status")
	ErrDecode     = errors.New("catalog response could not be decoded")
	ErrNotFound   = errors.New("track not found")
)

const (
	defaultBaseURL = "https://itunes.apple.com"
	defaultLimit   = 20
	defaultTimeout = 10 * time.Second
)

// Config represents catalog client configuration.
type Config struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
}

// Client is an iTunes Search API client.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// response is the envelope shared by /search and /lookup.
type response struct {
	ResultCount int           `json:"resultCount"`
	Results     []track.Track `json:"results"`
}

// New creates a new catalog client. Zero config fields take defaults.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search finds music tracks matching query.
// Reference: https://developer.apple.com/library/archive/documentation/AudioVideo/Conceptual/iTuneSearchAPI/Searching.html
func (c *Client) Search(ctx context.Context, query string) ([]track.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("term", query)
	params.Set("media", "music")
	params.Set("limit", strconv.Itoa(c.limit))

	resp, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("itunes: search %q returned %d results", query, resp.ResultCount)
	return resp.Results, nil
}

// Lookup fetches a single track by catalog ID.
func (c *Client) Lookup(ctx context.Context, id int64) (track.Track, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))

	resp, err := c.get(ctx, "/lookup", params)
	if err != nil {
		return track.Track{}, err
	}
	if resp.ResultCount == 0 || len(resp.Results) == 0 {
		return track.Track{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return resp.Results[0], nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*response, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to create request"), ErrNetwork)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to send request"), ErrNetwork)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read response body"), ErrNetwork)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Mark(errors.Newf("catalog error %d: %s", resp.StatusCode, truncate(body, 200)), ErrStatus)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse response"), ErrDecode)
	}
	if out.Results == nil {
		out.Results = make([]track.Track, 0)
	}
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
