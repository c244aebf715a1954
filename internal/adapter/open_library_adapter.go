package adapter

import (
	"book-tracker/internal/core"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type OpenLibraryClient struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
	limiter   *rate.Limiter
	log       *slog.Logger
}

// NewOpenLibraryClient builds a client that sends at most rps requests per second.
func NewOpenLibraryClient(baseURL, userAgent string, rps int, httpClient *http.Client, logger *slog.Logger) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	if rps < 1 {
		rps = 1
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenLibraryClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Client:    httpClient,
		UserAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		log:       logger,
	}
}

var _ core.EditionCounter = (*OpenLibraryClient)(nil)

type searchResponse struct {
	NumFound int `json:"numFound"`
}

// EditionsCount returns numFound for a title+author search.
func (c *OpenLibraryClient) EditionsCount(ctx context.Context, title, author string) (int, error) {
	q := url.QueryEscape(strings.TrimSpace(title + " " + author))
	u := fmt.Sprintf("%s/search.json?q=%s&mode=everything", c.BaseURL, q)

	resp, err := c.request(ctx, http.MethodGet, u)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("openlibrary: status %d: %s", resp.StatusCode, string(b))
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("openlibrary: decode search: %w", err)
	}
	return sr.NumFound, nil
}

// ValidateImageURL reports whether a HEAD on u answers 2xx with an image
// content type. Any failure yields false.
func (c *OpenLibraryClient) ValidateImageURL(ctx context.Context, u string) bool {
	resp, err := c.request(ctx, http.MethodHead, u)
	if err != nil {
		c.log.Debug("image HEAD failed", "url", u, "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}

// ProbeCover checks that a resolved cover source can be displayed: local
// references must be readable files, remote ones must validate. Failures
// are logged only; callers fall back to the placeholder.
func (c *OpenLibraryClient) ProbeCover(ctx context.Context, src string) bool {
	if core.IsLocalRef(src) {
		path, err := core.PathFromLocalRef(src)
		if err == nil {
			var fi os.FileInfo
			if fi, err = os.Stat(path); err == nil && fi.Mode().IsRegular() {
				return true
			}
		}
		c.log.Warn("cover image unavailable", "src", src, "error", err)
		return false
	}
	if !c.ValidateImageURL(ctx, src) {
		c.log.Warn("cover image unavailable", "src", src)
		return false
	}
	return true
}

func (c *OpenLibraryClient) request(ctx context.Context, method, u string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return c.Client.Do(req)
}
