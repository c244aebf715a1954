package core

import (
	"book-tracker/internal/core/model"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Gateway is the remote book/notes/stats API.
type Gateway interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	CreateBook(ctx context.Context, in model.BookInput) (model.Book, error)
	UpdateBook(ctx context.Context, id int, patch model.BookPatch) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	ListNotes(ctx context.Context, bookID int) ([]model.Note, error)
	CreateNote(ctx context.Context, bookID int, in model.NoteInput) (model.Note, error)
	GetStats(ctx context.Context) (model.Stats, error)
}

type EditionCounter interface {
	EditionsCount(ctx context.Context, title, author string) (int, error)
}

var errNoEditions = errors.New("editions lookup not configured")

// Service is the layer the commands talk to. Forms are validated before
// any gateway call; gateway failures are logged and returned, never retried.
type Service struct {
	Gateway  Gateway
	Editions EditionCounter
	Forms    *FormValidator
	log      *slog.Logger
}

func NewService(gw Gateway, editions EditionCounter, forms *FormValidator, logger *slog.Logger) *Service {
	if forms == nil {
		forms = NewFormValidator(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Gateway: gw, Editions: editions, Forms: forms, log: logger}
}

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	books, err := s.Gateway.ListBooks(ctx)
	if err != nil {
		return nil, s.fail("list books", err)
	}
	return books, nil
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	b, err := s.Gateway.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, s.fail("get book", err, "id", id)
	}
	return b, nil
}

func (s *Service) CreateBook(ctx context.Context, form BookForm) (model.Book, error) {
	if err := s.Forms.Validate(form); err != nil {
		return model.Book{}, err
	}
	s.warn(form)
	b, err := s.Gateway.CreateBook(ctx, form.Input())
	if err != nil {
		return model.Book{}, s.fail("create book", err)
	}
	s.log.Info("book created", "id", b.ID, "name", b.Name)
	return b, nil
}

func (s *Service) UpdateBook(ctx context.Context, id int, form BookForm) (model.Book, error) {
	if err := s.Forms.Validate(form); err != nil {
		return model.Book{}, err
	}
	s.warn(form)
	b, err := s.Gateway.UpdateBook(ctx, id, model.PatchFromInput(form.Input()))
	if err != nil {
		return model.Book{}, s.fail("update book", err, "id", id)
	}
	s.log.Info("book updated", "id", id)
	return b, nil
}

// SetRating changes only the rating and returns the book as updated locally.
func (s *Service) SetRating(ctx context.Context, b model.Book, rating int) (model.Book, error) {
	if rating < 0 || rating > 5 {
		return model.Book{}, &model.ValidationError{Fields: []model.FieldError{
			{Field: "rating", Message: "rating must be between 0 and 5"},
		}}
	}
	if _, err := s.Gateway.UpdateBook(ctx, b.ID, model.BookPatch{Rating: &rating}); err != nil {
		return model.Book{}, s.fail("set rating", err, "id", b.ID)
	}
	b.Rating = rating
	return b, nil
}

// SetCover stores a resolved capture result on the book.
func (s *Service) SetCover(ctx context.Context, id int, cover string) (model.Book, error) {
	b, err := s.Gateway.UpdateBook(ctx, id, model.BookPatch{Cover: &cover})
	if err != nil {
		return model.Book{}, s.fail("set cover", err, "id", id)
	}
	return b, nil
}

func (s *Service) DeleteBook(ctx context.Context, id int) error {
	if err := s.Gateway.DeleteBook(ctx, id); err != nil {
		return s.fail("delete book", err, "id", id)
	}
	s.log.Info("book deleted", "id", id)
	return nil
}

func (s *Service) ListNotes(ctx context.Context, bookID int) ([]model.Note, error) {
	notes, err := s.Gateway.ListNotes(ctx, bookID)
	if err != nil {
		return nil, s.fail("list notes", err, "book_id", bookID)
	}
	return notes, nil
}

func (s *Service) AddNote(ctx context.Context, bookID int, content string) (model.Note, error) {
	c, err := ValidateNote(content)
	if err != nil {
		return model.Note{}, err
	}
	n, err := s.Gateway.CreateNote(ctx, bookID, model.NoteInput{Content: c})
	if err != nil {
		return model.Note{}, s.fail("add note", err, "book_id", bookID)
	}
	return n, nil
}

func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	st, err := s.Gateway.GetStats(ctx)
	if err != nil {
		return model.Stats{}, s.fail("load stats", err)
	}
	return st, nil
}

// EditionsCount asks Open Library how many editions match the book.
func (s *Service) EditionsCount(ctx context.Context, b model.Book) (int, error) {
	if s.Editions == nil {
		return 0, errNoEditions
	}
	n, err := s.Editions.EditionsCount(ctx, b.Name, b.Author)
	if err != nil {
		return 0, s.fail("editions count", err, "id", b.ID)
	}
	return n, nil
}

func (s *Service) warn(form BookForm) {
	for _, w := range s.Forms.Warnings(form) {
		s.log.Warn("suspicious form field", "field", w.Field, "message", w.Message)
	}
}

func (s *Service) fail(op string, err error, attrs ...any) error {
	s.log.Error(op+" failed", append(attrs, "error", err)...)
	return fmt.Errorf("%s: %w", op, err)
}
