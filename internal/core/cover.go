package core

import (
	"book-tracker/internal/core/model"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	localScheme         = "file://"
	DefaultCoverBaseURL = "https://covers.openlibrary.org"
	DefaultCoverSize    = model.CoverLarge
)

type coverConfig struct {
	baseURL string
	size    model.CoverSize
}

type CoverOption func(*coverConfig)

// WithCoverBaseURL overrides the Open Library covers host.
func WithCoverBaseURL(u string) CoverOption {
	return func(c *coverConfig) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCoverSize picks the size token for ISBN-derived covers.
func WithCoverSize(s model.CoverSize) CoverOption {
	return func(c *coverConfig) {
		switch s {
		case model.CoverSmall, model.CoverMedium, model.CoverLarge:
			c.size = s
		}
	}
}

// ResolveCover decides which image to display for a book:
// a local file reference first, then a remote URL, then the ISBN lookup.
// Nil means the caller shows a placeholder.
func ResolveCover(cover, isbn *string, opts ...CoverOption) *string {
	cfg := coverConfig{baseURL: DefaultCoverBaseURL, size: DefaultCoverSize}
	for _, o := range opts {
		o(&cfg)
	}

	if cover != nil {
		c := *cover
		if IsLocalRef(c) || IsRemoteURL(c) {
			return &c
		}
	}
	if isbn != nil {
		if u := coverURL(cfg.baseURL, *isbn, cfg.size); u != "" {
			return &u
		}
	}
	return nil
}

// CoverURLForISBN builds the Open Library cover URL for isbn, or "" when
// nothing is left after cleaning.
func CoverURLForISBN(isbn string, size model.CoverSize) string {
	return coverURL(DefaultCoverBaseURL, isbn, size)
}

func coverURL(base, isbn string, size model.CoverSize) string {
	clean := CleanISBN(isbn)
	if clean == "" {
		return ""
	}
	if size == "" {
		size = DefaultCoverSize
	}
	return fmt.Sprintf("%s/b/isbn/%s-%s.jpg", base, clean, size)
}

// CleanISBN strips hyphens and whitespace.
func CleanISBN(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func IsLocalRef(s string) bool {
	return strings.HasPrefix(s, localScheme)
}

func IsRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// LocalRefFromPath converts a filesystem path to a file:// reference.
func LocalRefFromPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// PathFromLocalRef is the inverse of LocalRefFromPath. Plain paths pass through.
func PathFromLocalRef(ref string) (string, error) {
	if !IsLocalRef(ref) {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse local ref %q: %w", ref, err)
	}
	return filepath.FromSlash(u.Path), nil
}
