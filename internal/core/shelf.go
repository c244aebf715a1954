package core

import (
	"book-tracker/internal/core/model"
	"context"
)

type BookLister interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
}

// Shelf owns the books loaded for one screen and the derived view.
// Every mutation recomputes the view; nothing is cached across reloads.
type Shelf struct {
	books []model.Book
	query model.ViewQuery
	view  []model.Book
	opts  []ViewOption
}

func NewShelf(opts ...ViewOption) *Shelf {
	s := &Shelf{
		query: model.ViewQuery{Filter: model.FilterAll, Sort: model.SortTitle},
		opts:  opts,
	}
	s.recompute()
	return s
}

// Reload replaces the content from l. On error the previous content stays.
func (s *Shelf) Reload(ctx context.Context, l BookLister) error {
	books, err := l.ListBooks(ctx)
	if err != nil {
		return err
	}
	s.SetBooks(books)
	return nil
}

func (s *Shelf) SetBooks(books []model.Book) {
	s.books = append([]model.Book(nil), books...)
	s.recompute()
}

func (s *Shelf) SetQuery(q string) {
	s.query.Query = q
	s.recompute()
}

func (s *Shelf) SetFilter(f model.Filter) {
	s.query.Filter = f
	s.recompute()
}

func (s *Shelf) SetSort(k model.SortKey) {
	s.query.Sort = k
	s.recompute()
}

func (s *Shelf) SetViewQuery(q model.ViewQuery) {
	s.query = q
	s.recompute()
}

// Remove drops the book with id, as after a successful delete.
func (s *Shelf) Remove(id int) bool {
	for i, b := range s.books {
		if b.ID == id {
			s.books = append(s.books[:i:i], s.books[i+1:]...)
			s.recompute()
			return true
		}
	}
	return false
}

// Replace swaps in an updated copy of a book, keeping its position.
func (s *Shelf) Replace(b model.Book) bool {
	for i := range s.books {
		if s.books[i].ID == b.ID {
			s.books[i] = b
			s.recompute()
			return true
		}
	}
	return false
}

func (s *Shelf) Find(id int) (model.Book, bool) {
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return model.Book{}, false
}

// View is the current derived list. Callers must not modify it.
func (s *Shelf) View() []model.Book { return s.view }

func (s *Shelf) Len() int { return len(s.view) }

func (s *Shelf) Total() int { return len(s.books) }

func (s *Shelf) Query() model.ViewQuery { return s.query }

func (s *Shelf) recompute() {
	s.view = BuildView(s.books, s.query, s.opts...)
}
