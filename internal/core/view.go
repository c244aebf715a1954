package core

import (
	"book-tracker/internal/core/model"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type viewConfig struct {
	locale language.Tag
}

// ViewOption tunes BuildView.
type ViewOption func(*viewConfig)

// WithLocale sets the collation used by the text sort keys.
func WithLocale(tag language.Tag) ViewOption {
	return func(c *viewConfig) { c.locale = tag }
}

// BuildView derives the displayed list from the loaded books.
// The flow is:
//
//  1. Keep books whose title or author contains the trimmed query
//     (accent and case insensitive). An empty query keeps everything.
//  2. Apply the single active filter.
//  3. Stable sort by the single active key.
//
// Unknown filters and sort keys leave the list untouched. The input slice
// is never modified.
func BuildView(books []model.Book, q model.ViewQuery, opts ...ViewOption) []model.Book {
	cfg := viewConfig{locale: language.English}
	for _, o := range opts {
		o(&cfg)
	}

	needle := Normalize(strings.TrimSpace(q.Query))
	out := make([]model.Book, 0, len(books))
	for _, b := range books {
		if needle != "" && !matchQuery(b, needle) {
			continue
		}
		if !matchFilter(b, q.Filter) {
			continue
		}
		out = append(out, b)
	}

	sortBooks(out, q.Sort, cfg.locale)
	return out
}

func matchQuery(b model.Book, needle string) bool {
	return strings.Contains(Normalize(b.Name), needle) ||
		strings.Contains(Normalize(b.Author), needle)
}

func matchFilter(b model.Book, f model.Filter) bool {
	switch f {
	case model.FilterRead:
		return b.Read
	case model.FilterUnread:
		return !b.Read
	case model.FilterFavorite:
		return b.Favorite
	default:
		return true
	}
}

// sortBooks sorts in place by one key; ties keep collection order.
func sortBooks(bs []model.Book, key model.SortKey, tag language.Tag) {
	var text func(model.Book) string
	switch key {
	case model.SortTitle:
		text = func(b model.Book) string { return b.Name }
	case model.SortAuthor:
		text = func(b model.Book) string { return b.Author }
	case model.SortTheme:
		text = func(b model.Book) string { return b.Theme }
	case model.SortRating:
		slices.SortStableFunc(bs, func(a, b model.Book) int { return b.Rating - a.Rating })
		return
	case model.SortYear:
		slices.SortStableFunc(bs, func(a, b model.Book) int { return b.Year - a.Year })
		return
	default:
		return
	}

	// a collator keeps internal buffers, so one per call
	c := collate.New(tag, collate.IgnoreCase)
	slices.SortStableFunc(bs, func(a, b model.Book) int {
		return c.CompareString(text(a), text(b))
	})
}

// ParseFilter maps user input to a Filter. Unknown values yield FilterAll, false.
func ParseFilter(s string) (model.Filter, bool) {
	f := model.Filter(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(model.Filters, f) {
		return f, true
	}
	return model.FilterAll, false
}

// ParseSortKey maps user input to a SortKey. Unknown values yield SortTitle, false.
func ParseSortKey(s string) (model.SortKey, bool) {
	k := model.SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(model.SortKeys, k) {
		return k, true
	}
	return model.SortTitle, false
}
