//go:build unit

package adapter

import (
	"book-tracker/internal/core"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenLibrary(t *testing.T, h http.Handler) *OpenLibraryClient {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewOpenLibraryClient(ts.URL, "booktrack-test", 100, ts.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEditionsCount(t *testing.T) {
	var gotQuery, gotUA string
	c := newOpenLibrary(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte(`{"numFound": 42, "docs": []}`))
	}))

	n, err := c.EditionsCount(context.Background(), "Dune", "Frank Herbert")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.Equal(t, "Dune Frank Herbert", gotQuery)
	assert.Equal(t, "booktrack-test", gotUA)
}

func TestEditionsCount_Errors(t *testing.T) {
	c := newOpenLibrary(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	_, err := c.EditionsCount(context.Background(), "Dune", "")
	assert.ErrorContains(t, err, "status 429")

	bad := newOpenLibrary(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	_, err = bad.EditionsCount(context.Background(), "Dune", "")
	assert.ErrorContains(t, err, "decode")
}

func TestValidateImageURL(t *testing.T) {
	c := newOpenLibrary(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cover.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
		default:
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, http.MethodHead, r.Method)
	}))

	ctx := context.Background()
	assert.True(t, c.ValidateImageURL(ctx, c.BaseURL+"/cover.jpg"))
	assert.False(t, c.ValidateImageURL(ctx, c.BaseURL+"/page.html"))
	assert.False(t, c.ValidateImageURL(ctx, c.BaseURL+"/missing.jpg"))
	assert.False(t, c.ValidateImageURL(ctx, "http://127.0.0.1:1/unreachable.jpg"))
}

func TestProbeCover(t *testing.T) {
	c := newOpenLibrary(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "c.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o644))
	ref, err := core.LocalRefFromPath(path)
	require.NoError(t, err)

	assert.True(t, c.ProbeCover(ctx, ref))
	assert.False(t, c.ProbeCover(ctx, ref+".gone"))
	assert.True(t, c.ProbeCover(ctx, c.BaseURL+"/b/isbn/123-L.jpg"))
}

func TestNewOpenLibraryClientDefaults(t *testing.T) {
	c := NewOpenLibraryClient("", "", 0, nil, nil)
	assert.Equal(t, "https://openlibrary.org", c.BaseURL)
	assert.Equal(t, http.DefaultClient, c.Client)
}
