package adapter

import (
	"book-tracker/internal/core/model"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	errNotFound = errors.New("not found")
	errInvalid  = errors.New("invalid")
)

// BookRepo is the in-memory store behind the stand-in library API.
type BookRepo struct {
	mu       sync.RWMutex
	byID     map[int]model.Book
	notes    map[int][]model.Note // book id -> notes, oldest first
	nextBook int
	nextNote int
	now      func() time.Time
}

func NewBookRepo() *BookRepo {
	return &BookRepo{
		byID:  make(map[int]model.Book),
		notes: make(map[int][]model.Note),
		now:   time.Now,
	}
}

func (r *BookRepo) Create(_ context.Context, in model.BookInput) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextBook++
	b := model.Book{
		ID:       r.nextBook,
		Name:     in.Name,
		Author:   in.Author,
		Editor:   in.Editor,
		Year:     in.Year,
		Read:     in.Read,
		Favorite: in.Favorite,
		Rating:   in.Rating,
		Cover:    copyStr(in.Cover),
		Theme:    in.Theme,
		ISBN:     copyStr(in.ISBN),
	}
	r.byID[b.ID] = b
	return copyBook(b), nil
}

func (r *BookRepo) GetByID(_ context.Context, id int) (model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return model.Book{}, errNotFound
	}
	return copyBook(b), nil
}

// List returns every book in id order.
func (r *BookRepo) List(_ context.Context) ([]model.Book, error) {
	r.mu.RLock()
	items := make([]model.Book, 0, len(r.byID))
	for _, b := range r.byID {
		items = append(items, copyBook(b))
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Update applies the non-nil fields of p.
func (r *BookRepo) Update(_ context.Context, id int, p model.BookPatch) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return model.Book{}, errNotFound
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Editor != nil {
		b.Editor = *p.Editor
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	if p.Read != nil {
		b.Read = *p.Read
	}
	if p.Favorite != nil {
		b.Favorite = *p.Favorite
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	if p.Cover != nil {
		b.Cover = clearable(p.Cover)
	}
	if p.Theme != nil {
		b.Theme = *p.Theme
	}
	if p.ISBN != nil {
		b.ISBN = clearable(p.ISBN)
	}
	r.byID[id] = b
	return copyBook(b), nil
}

// Delete removes the book and its notes.
func (r *BookRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return errNotFound
	}
	delete(r.byID, id)
	delete(r.notes, id)
	return nil
}

func (r *BookRepo) ListNotes(_ context.Context, bookID int) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.byID[bookID]; !ok {
		return nil, errNotFound
	}
	return append([]model.Note{}, r.notes[bookID]...), nil
}

func (r *BookRepo) AddNote(_ context.Context, bookID int, content string) (model.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Note{}, errInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[bookID]; !ok {
		return model.Note{}, errNotFound
	}
	r.nextNote++
	n := model.Note{
		ID:      r.nextNote,
		BookID:  bookID,
		Content: content,
		DateISO: r.now().UTC().Format(time.RFC3339),
	}
	r.notes[bookID] = append(r.notes[bookID], n)
	return n, nil
}

// Stats derives the aggregate snapshot from the current content.
func (r *BookRepo) Stats(_ context.Context) (model.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var st model.Stats
	total := 0
	for _, b := range r.byID {
		st.TotalBooks++
		if b.Read {
			st.ReadCount++
		}
		if b.Favorite {
			st.FavoritesCount++
		}
		total += b.Rating
	}
	st.UnreadCount = st.TotalBooks - st.ReadCount
	if st.TotalBooks > 0 {
		st.AverageRating = float64(total) / float64(st.TotalBooks)
	}
	return st, nil
}

func copyBook(b model.Book) model.Book {
	b.Cover = copyStr(b.Cover)
	b.ISBN = copyStr(b.ISBN)
	return b
}

// clearable maps an explicit empty value to "no value".
func clearable(p *string) *string {
	if strings.TrimSpace(*p) == "" {
		return nil
	}
	return copyStr(p)
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
