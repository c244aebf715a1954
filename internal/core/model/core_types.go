package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// All core models live here together for simplicity.

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not_found")
	ErrUpstream          = errors.New("upstream")
	ErrPermissionDenied  = errors.New("permission_denied")
	ErrCaptureBusy       = errors.New("capture_busy")
	ErrIllegalTransition = errors.New("illegal_transition")
)

// Book is the client copy of a library entry. The remote service owns it.
type Book struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Author   string  `json:"author"`
	Editor   string  `json:"editor"`
	Year     int     `json:"year"`
	Read     bool    `json:"read"`
	Favorite bool    `json:"favorite"`
	Rating   int     `json:"rating"`
	Cover    *string `json:"cover"`
	Theme    string  `json:"theme"`
	ISBN     *string `json:"isbn,omitempty"`
}

// BookInput is the creation payload: every Book field except the id.
type BookInput struct {
	Name     string  `json:"name"`
	Author   string  `json:"author"`
	Editor   string  `json:"editor"`
	Year     int     `json:"year"`
	Read     bool    `json:"read"`
	Favorite bool    `json:"favorite"`
	Rating   int     `json:"rating"`
	Cover    *string `json:"cover"`
	Theme    string  `json:"theme"`
	ISBN     *string `json:"isbn,omitempty"`
}

// BookPatch is a partial update; nil fields are left untouched by the server.
// An empty Cover or ISBN clears the stored value.
type BookPatch struct {
	Name     *string `json:"name,omitempty"`
	Author   *string `json:"author,omitempty"`
	Editor   *string `json:"editor,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Read     *bool   `json:"read,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
	Cover    *string `json:"cover,omitempty"`
	Theme    *string `json:"theme,omitempty"`
	ISBN     *string `json:"isbn,omitempty"`
}

// PatchFromInput turns a full input into a patch that overwrites every field,
// clearing cover and isbn when the input has none.
func PatchFromInput(in BookInput) BookPatch {
	return BookPatch{
		Name:     &in.Name,
		Author:   &in.Author,
		Editor:   &in.Editor,
		Year:     &in.Year,
		Read:     &in.Read,
		Favorite: &in.Favorite,
		Rating:   &in.Rating,
		Cover:    orEmpty(in.Cover),
		Theme:    &in.Theme,
		ISBN:     orEmpty(in.ISBN),
	}
}

func orEmpty(p *string) *string {
	if p == nil {
		return new(string)
	}
	return p
}

type Note struct {
	ID      int    `json:"id"`
	BookID  int    `json:"bookId"`
	Content string `json:"content"`
	DateISO string `json:"dateISO"`
}

// CreatedAt parses the server-assigned timestamp.
func (n Note) CreatedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, n.DateISO)
}

type NoteInput struct {
	Content string `json:"content"`
}

// Stats is a read-only snapshot computed by the server.
type Stats struct {
	TotalBooks     int     `json:"totalBooks"`
	ReadCount      int     `json:"readCount"`
	UnreadCount    int     `json:"unreadCount"`
	FavoritesCount int     `json:"favoritesCount"`
	AverageRating  float64 `json:"averageRating"`
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Success  *bool  `json:"success,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Filter selects which books survive the view. Exactly one is active.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterRead     Filter = "read"
	FilterUnread   Filter = "unread"
	FilterFavorite Filter = "favorite"
)

// Filters lists the known filters in display order.
var Filters = []Filter{FilterAll, FilterRead, FilterUnread, FilterFavorite}

// SortKey selects the single ordering of the view.
type SortKey string

const (
	SortTitle  SortKey = "title"
	SortAuthor SortKey = "author"
	SortTheme  SortKey = "theme"
	SortRating SortKey = "rating"
	SortYear   SortKey = "year"
)

// SortKeys lists the known sort keys in display order.
var SortKeys = []SortKey{SortTitle, SortAuthor, SortTheme, SortRating, SortYear}

type ViewQuery struct {
	Query  string
	Filter Filter
	Sort   SortKey
}

// CoverSize is the size token of the Open Library cover convention.
type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every offending field of a rejected form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Has reports whether field is among the offending fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
